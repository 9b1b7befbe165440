// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLogWriterTeesIntoFile(t *testing.T) {
	var console bytes.Buffer
	SetLogOutput(&console)
	defer SetLogOutput(os.Stdout)

	fileName := filepath.Join(t.TempDir(), "test.log")
	if err := LogAlsoToFile(fileName); err != nil {
		t.Fatalf("LogAlsoToFile: %v", err)
	}
	LogPrintf("bins=%d\n", 120)
	LogPrintln("done")
	LogSync()

	want := "bins=120\ndone\n"
	if got := console.String(); got != want {
		t.Errorf("console=%q; want %q", got, want)
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != want {
		t.Errorf("file=%q; want %q", got, want)
	}

	// close the file before the temp dir is removed
	logMu.Lock()
	logFile.Flush()
	logFileOS.Close()
	logFile, logFileOS = nil, nil
	logMu.Unlock()
}
