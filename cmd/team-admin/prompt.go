package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type promptConfirmer struct {
	in        io.Reader
	out       io.Writer
	assumeYes bool
}

func (p *promptConfirmer) Confirm(_ context.Context, prompt string) bool {
	if p.assumeYes {
		return true
	}
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(p.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

type writerAlerter struct {
	out io.Writer
}

func (a *writerAlerter) Alert(_ context.Context, message string) {
	fmt.Fprintln(a.out, "error:", message)
}
