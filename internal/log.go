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
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// Singleton log writer. Writes to stdout, and optionally to a file.
// Does not add prefixes, or force newlines. Safe for use from HTTP handlers.

var logMu sync.Mutex
var logOut io.Writer = os.Stdout

// The optional additional file to log into
var logFile *bufio.Writer
var logFileOS *os.File

// Redirects the console half of the log, e.g. to capture output in tests
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logOut = w
}

// Enables logging to file. Any previously opened log file is flushed and closed
func LogAlsoToFile(fileName string) (err error) {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		if err = logFile.Flush(); err != nil {
			return err
		}
		if err = logFileOS.Close(); err != nil {
			return err
		}
		logFile, logFileOS = nil, nil
	}
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	logFileOS = f
	logFile = bufio.NewWriter(logFileOS)
	return nil
}

// Returns a writer which tees into the console and the log file, if any.
// Used to route third-party loggers such as gin's into the same sinks
func LogWriter() io.Writer {
	return logWriterFunc(func(p []byte) (int, error) {
		logMu.Lock()
		defer logMu.Unlock()
		n, err := logOut.Write(p)
		if err != nil || logFile == nil {
			return n, err
		}
		return logFile.Write(p)
	})
}

type logWriterFunc func(p []byte) (int, error)

func (f logWriterFunc) Write(p []byte) (int, error) { return f(p) }

func LogPrint(args ...interface{}) (n int, err error) {
	return fmt.Fprint(LogWriter(), args...)
}

func LogPrintln(args ...interface{}) (n int, err error) {
	return fmt.Fprintln(LogWriter(), args...)
}

func LogPrintf(format string, args ...interface{}) (n int, err error) {
	return fmt.Fprintf(LogWriter(), format, args...)
}

func LogFatal(args ...interface{}) {
	fmt.Fprintln(LogWriter(), args...)
	LogSync()
	os.Exit(1)
}

func LogFatalf(format string, args ...interface{}) {
	fmt.Fprintf(LogWriter(), format, args...)
	LogSync()
	os.Exit(1)
}

// Flushes the log file to disk, if logging to file is enabled
func LogSync() {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile == nil {
		return
	}
	logFile.Flush()
	logFileOS.Sync()
}
