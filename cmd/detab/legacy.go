// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// 🗺️ legacySwitch maps a switch spelling to the flag cobra knows it by
type legacySwitch struct {
	flag      string
	takesArg  bool
	foldCase  bool
	atoiValue bool
}

// Keys are the switch text without the leading dash.
var legacySwitches = map[string]legacySwitch{
	"?":        {flag: "help", foldCase: true},
	"h":        {flag: "help", foldCase: true},
	"-help":    {flag: "help", foldCase: true},
	"a":        {flag: "append", foldCase: true},
	"-append":  {flag: "append"},
	"b":        {flag: "bak", foldCase: true},
	"bak":      {flag: "bak", foldCase: true},
	"-bak":     {flag: "bak", foldCase: true},
	"d":        {flag: "debug"},
	"-debug":   {flag: "debug"},
	"=":        {flag: "same"},
	"same":     {flag: "same", foldCase: true},
	"-same":    {flag: "same", foldCase: true},
	"st":       {flag: "st", foldCase: true},
	"-st":      {flag: "st"},
	"t":        {flag: "tabs", takesArg: true, foldCase: true, atoiValue: true},
	"-tabs":    {flag: "tabs", takesArg: true, atoiValue: true},
	"v":        {flag: "verbose"},
	"-verbose": {flag: "verbose"},
	"V":        {flag: "version"},
	"-version": {flag: "version"},
	"-config":  {flag: "config", takesArg: true},
	"-glob":    {flag: "glob", takesArg: true},
	"-dry-run": {flag: "dry-run"},
}

func lookupSwitch(opt string) (legacySwitch, bool) {
	if sw, ok := legacySwitches[opt]; ok {
		return sw, true
	}
	sw, ok := legacySwitches[strings.ToLower(opt)]
	if ok && sw.foldCase {
		return sw, true
	}
	return legacySwitch{}, false
}

// 🔄 normalizeArgs rewrites the historical command line into long flags.
//
// Switches are matched one token at a time, the way detab always parsed
// them: "-bak", "-BAK", "-=", "-st" and "-?" all work, combined short flags
// do not. Unknown switches are reported on warn and dropped. The lone "-"
// is an argument naming stdin or stdout. "-=" right after INFILE stands in
// for OUTFILE. From the third argument on, every argument is a tab width, so
// it becomes a --tabs flag in place, keeping the last-one-wins order with -t.
func normalizeArgs(args []string, warn io.Writer) []string {
	out := make([]string, 0, len(args))
	positional := 0

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) < 2 || arg[0] != '-' {
			positional++
			if positional > 2 {
				out = append(out, "--tabs="+strconv.Itoa(atoi(arg)))
				continue
			}
			out = append(out, arg)
			continue
		}

		opt, value, hasValue := arg[1:], "", false
		if strings.HasPrefix(opt, "-") {
			if eq := strings.IndexByte(opt, '='); eq > 0 {
				opt, value, hasValue = opt[:eq], opt[eq+1:], true
			}
		}

		sw, ok := lookupSwitch(opt)
		if !ok || (hasValue && !sw.takesArg) {
			fmt.Fprintf(warn, "Invalid switch %s\n", arg)
			continue
		}

		if !sw.takesArg {
			if opt == "=" && positional == 1 {
				positional++
			}
			out = append(out, "--"+sw.flag)
			continue
		}

		if !hasValue {
			if i+1 >= len(args) {
				continue
			}
			i++
			value = args[i]
		}
		if sw.atoiValue {
			value = strconv.Itoa(atoi(value))
		}
		out = append(out, "--"+sw.flag+"="+value)
	}

	return out
}

// atoi converts the leading decimal number of s, ignoring anything after
// it. Text without a number is 0, which later fails width validation.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		if n > 1<<20 {
			// far outside any valid width, stop before overflowing
			break
		}
	}
	if neg {
		return -n
	}
	return n
}
