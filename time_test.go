package jwtcodec

import (
	"testing"
)

func TestFilterUnixInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"1516239022", "1516239022"},
		{"-42", "-42"},
		{"4-2", "42"},
		{"--1", "-1"},
		{"1,516,239,022", "1516239022"},
		{" 12 ", "12"},
		{"abc", ""},
		{"-", "-"},
		{"1.5e3", "153"},
		{"١٢٣", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FilterUnixInput(tt.input); got != tt.want {
				t.Errorf("FilterUnixInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatUnix(t *testing.T) {
	tests := []struct {
		sec  int64
		want string
	}{
		{0, "1970-01-01 00:00:00 (UTC)"},
		{1516239022, "2018-01-18 01:30:22 (UTC)"},
		{-1, "1969-12-31 23:59:59 (UTC)"},
		{253402300799, "9999-12-31 23:59:59 (UTC)"},
		{253402300800, "+10000-01-01 00:00:00 (UTC)"},
		{-62167219200, "0000-01-01 00:00:00 (UTC)"},
		{-62167219201, "-0001-12-31 23:59:59 (UTC)"},
	}

	for _, tt := range tests {
		got, ok := FormatUnix(tt.sec)
		if !ok {
			t.Errorf("FormatUnix(%d) out of range", tt.sec)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatUnix(%d) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}

func TestFormatUnixRange(t *testing.T) {
	got, ok := FormatUnix(maxTimestamp)
	if !ok || got != "+262142-12-31 23:59:59 (UTC)" {
		t.Errorf("FormatUnix(max) = %q, %v", got, ok)
	}
	got, ok = FormatUnix(minTimestamp)
	if !ok || got != "-262143-01-01 00:00:00 (UTC)" {
		t.Errorf("FormatUnix(min) = %q, %v", got, ok)
	}

	for _, sec := range []int64{maxTimestamp + 1, minTimestamp - 1, 1<<63 - 1, -1 << 63} {
		if got, ok := FormatUnix(sec); ok || got != "" {
			t.Errorf("FormatUnix(%d) = %q, %v; want out of range", sec, got, ok)
		}
	}
}

func TestConvertUnixInput(t *testing.T) {
	tests := []struct {
		raw          string
		wantFiltered string
		wantFormat   string
	}{
		{"1516239022", "1516239022", "2018-01-18 01:30:22 (UTC)"},
		{"ts: 0", "0", "1970-01-01 00:00:00 (UTC)"},
		{"", "", ""},
		{"-", "-", ""},
		{"99999999999999999999", "99999999999999999999", ""},
		{"9223372036854775807", "9223372036854775807", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			filtered, formatted := ConvertUnixInput(tt.raw)
			if filtered != tt.wantFiltered || formatted != tt.wantFormat {
				t.Errorf("ConvertUnixInput(%q) = %q, %q; want %q, %q",
					tt.raw, filtered, formatted, tt.wantFiltered, tt.wantFormat)
			}
		})
	}
}
