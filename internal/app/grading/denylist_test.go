package grading

import "testing"

func TestScan(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		language string
		want     bool
	}{
		{"clean python", "def solve(n):\n    return n * 2", "python", false},
		{"python os import", "import os\nos.listdir('/')", "python", true},
		{"python from os", "from os import path", "python", true},
		{"python eval", "result = eval(user_input)", "python", true},
		{"python open", "f = open('/etc/passwd')", "python", true},
		{"python substring not import", "cost = 5", "python", false},
		{"clean javascript", "const solve = n => n * 2;", "javascript", false},
		{"js child_process", "require('child_process').exec('ls')", "javascript", true},
		{"js fs", "const fs = require(\"fs\")", "javascript", true},
		{"js new Function", "const f = new Function('return 1')", "javascript", true},
		{"js process env", "console.log(process.env)", "javascript", true},
		{"clean go", "package main\n\nfunc solve(n int) int { return n * 2 }", "go", false},
		{"go exec import", "import \"os/exec\"", "go", true},
		{"go unsafe", "import \"unsafe\"", "go", true},
		{"go file write", "os.WriteFile(\"x\", data, 0644)", "go", true},
		{"unknown language falls back", "system(\"rm -rf /\")", "ruby", true},
		{"unknown language clean", "puts 1 + 2", "ruby", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, found := Scan(tt.code, tt.language)
			if found != tt.want {
				t.Fatalf("Scan(%q, %s) found = %v (match %q), want %v", tt.code, tt.language, found, match, tt.want)
			}
			if found && match == "" {
				t.Fatal("positive scan returned an empty match")
			}
		})
	}
}
