package browser

import (
	"errors"
	"testing"
)

func TestOpenValidatesScheme(t *testing.T) {
	var opened []string
	s := &System{launch: func(u string) error {
		opened = append(opened, u)
		return nil
	}}

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://www.bbc.co.uk/news/world-1", false},
		{"http://example.com/a?b=c", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"", true},
		{"://bad", true},
	}
	for _, tt := range tests {
		if err := s.Open(tt.url); (err != nil) != tt.wantErr {
			t.Errorf("Open(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
	if len(opened) != 2 {
		t.Errorf("launched %v, want the two http(s) links", opened)
	}
}

func TestOpenReportsLaunchFailure(t *testing.T) {
	boom := errors.New("no display")
	s := &System{launch: func(string) error { return boom }}
	if err := s.Open("https://example.com"); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}
