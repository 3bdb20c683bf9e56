package preprocessor

import "testing"

func TestResolve(t *testing.T) {
	locs := []Location{
		{File: "main", LocalLine: 1, GlobalLine: 1},
		{File: "empty", LocalLine: 1, GlobalLine: 4},
		{File: "main", LocalLine: 5, GlobalLine: 4},
		{File: "inc", LocalLine: 1, GlobalLine: 6},
		{File: "main", LocalLine: 7, GlobalLine: 9},
	}
	testCases := []struct {
		out  int
		file string
		line int
		ok   bool
	}{
		{0, "", 0, false},
		{1, "main", 1, true},
		{3, "main", 3, true},
		{4, "main", 5, true},
		{5, "main", 6, true},
		{6, "inc", 1, true},
		{8, "inc", 3, true},
		{9, "main", 7, true},
		{20, "main", 18, true},
	}
	for _, tc := range testCases {
		file, line, ok := Resolve(locs, tc.out)
		if file != tc.file || line != tc.line || ok != tc.ok {
			t.Errorf("Resolve(%d) = %s, %d, %v; want %s, %d, %v", tc.out, file, line, ok, tc.file, tc.line, tc.ok)
		}
	}
	if _, _, ok := Resolve(nil, 1); ok {
		t.Error("empty location list should not resolve")
	}
}

func TestLocationString(t *testing.T) {
	if got := (Location{File: "a.sinc", LocalLine: 3, GlobalLine: 10}).String(); got != "a.sinc:3(10)" {
		t.Errorf("got %q", got)
	}
}
