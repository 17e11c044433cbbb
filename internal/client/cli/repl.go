package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	Upload(ctx context.Context, args []string) error
	Cancel(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Info(ctx context.Context, args []string) error
	Find(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
}

const helpText = "Available commands: upload <path> [category=<c>] [title], cancel <job_id>, " +
	"status [job_id], info <file_id>, find <hash>, download <file_id> <dest>, exit"

// runREPL reads commands from scanner until EOF, "exit", "quit" or ctx is
// done. The prompt is printed only when prompt is true. Command errors are
// printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, prompt bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		if prompt {
			printlnFn(fmt.Sprintf("sm %s> ", statusFn()))
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "upload", "u":
			err = a.Upload(ctx, args)
		case "cancel":
			err = a.Cancel(ctx, args)
		case "status", "s":
			err = a.Status(ctx, args)
		case "info":
			err = a.Info(ctx, args)
		case "find":
			err = a.Find(ctx, args)
		case "download":
			err = a.Download(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
