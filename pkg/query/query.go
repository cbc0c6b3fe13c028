// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-valued URL query parameters.
package query

import (
	"net/url"
	"strings"
)

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// Values collects every occurrence of key, so "?tag=a,b&tag=c" and
// "?tag=a&tag=b,c" both yield [a b c].
func Values(values url.Values, key string) []string {
	var res []string
	for _, val := range values[key] {
		res = append(res, StringSlice(val)...)
	}
	return res
}
