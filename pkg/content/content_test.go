package content

import (
	"errors"
	"testing"
)

const sample = `[{"id":1},{"id":2},{"id":3},{"id":4},{"id":5}]`

func TestCount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr error
	}{
		{name: "five elements", body: sample, want: 5},
		{name: "empty array", body: `[]`, want: 0},
		{name: "empty body", body: ``, want: 0},
		{name: "whitespace body", body: "  \n", want: 0},
		{name: "object body", body: `{"id":1}`, wantErr: ErrNotArray},
		{name: "invalid json", body: `[{"id":`, wantErr: ErrNotArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Count([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Count() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Count() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name string
		fn   func([]byte) ([]byte, error)
		want string
	}{
		{
			name: "first two",
			fn:   func(b []byte) ([]byte, error) { return TrimToFirstN(b, 2) },
			want: `[{"id":1},{"id":2}]`,
		},
		{
			name: "first n larger than body",
			fn:   func(b []byte) ([]byte, error) { return TrimToFirstN(b, 50) },
			want: sample,
		},
		{
			name: "first zero",
			fn:   func(b []byte) ([]byte, error) { return TrimToFirstN(b, 0) },
			want: `[]`,
		},
		{
			name: "from offset",
			fn:   func(b []byte) ([]byte, error) { return TrimFromOffset(b, 3) },
			want: `[{"id":4},{"id":5}]`,
		},
		{
			name: "from offset past end",
			fn:   func(b []byte) ([]byte, error) { return TrimFromOffset(b, 9) },
			want: `[]`,
		},
		{
			name: "from offset for n",
			fn:   func(b []byte) ([]byte, error) { return TrimFromOffsetForN(b, 1, 2) },
			want: `[{"id":2},{"id":3}]`,
		},
		{
			name: "from offset for n clipped",
			fn:   func(b []byte) ([]byte, error) { return TrimFromOffsetForN(b, 4, 10) },
			want: `[{"id":5}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn([]byte(sample))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTrim_NotArray(t *testing.T) {
	if _, err := TrimFromOffset([]byte(`"text"`), 1); !errors.Is(err, ErrNotArray) {
		t.Errorf("TrimFromOffset() error = %v, want ErrNotArray", err)
	}
}

func TestRows(t *testing.T) {
	rows, err := Rows([]byte(`[{"id":1},{"id":2}]`), []byte(`[]`), []byte(`[{"id":3}]`))
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if string(rows[2]) != `{"id":3}` {
		t.Errorf("rows[2] = %s, want {\"id\":3}", rows[2])
	}

	empty, err := Rows()
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Rows() with no bodies = %v, want empty non-nil slice", empty)
	}
}
