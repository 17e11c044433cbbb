package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/client/services"
)

var errUsage = errors.New("wrong arguments")

func usage(u string) error {
	return fmt.Errorf("%w, usage: %s", errUsage, u)
}

// parseUploadArgs splits "path [category=c] [title words]".
func parseUploadArgs(args []string) (string, services.UploadOptions, error) {
	var opts services.UploadOptions
	if len(args) == 0 {
		return "", opts, usage("upload <path> [category=<c>] [title]")
	}

	var title []string
	for _, a := range args[1:] {
		if c, ok := strings.CutPrefix(a, "category="); ok {
			opts.Category = c
			continue
		}
		title = append(title, a)
	}
	opts.Title = strings.Join(title, " ")
	return args[0], opts, nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	path, opts, err := parseUploadArgs(args)
	if err != nil {
		return err
	}
	job, err := a.uploads.Schedule(ctx, path, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Queued %s as job %s (%s, %d bytes)\n", job.FileName, job.ID, job.ContentType, job.Size)
	return nil
}

func (a *App) Cancel(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("cancel <job_id>")
	}
	if err := a.uploads.Cancel(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cancel requested for %s\n", args[0])
	return nil
}

func (a *App) Status(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		return a.printJobs(ctx)
	case 1:
		return a.printHistory(ctx, args[0])
	default:
		return usage("status [job_id]")
	}
}

func (a *App) printJobs(ctx context.Context) error {
	recs, err := a.uploads.List(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No uploads yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tFILE\tSTATE\tDETAIL\tUPDATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.JobID, r.FileName, r.State, detail(r.State, r.FailureCode, r.FileID), r.UpdatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) printHistory(ctx context.Context, jobID string) error {
	hist, err := a.uploads.History(ctx, jobID)
	if err != nil {
		return err
	}
	for _, ev := range hist {
		fmt.Fprintf(a.out, "%s  %-9s %s\n", ev.At.Format(time.DateTime), ev.State, detail(ev.State, ev.FailureCode, ev.FileID))
	}
	return nil
}

func detail(state models.UploadState, code, fileID string) string {
	switch state {
	case models.StateFailed:
		return code
	case models.StateUploaded:
		return fileID
	}
	return ""
}

func (a *App) Info(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("info <file_id>")
	}
	info, err := a.files.Info(ctx, args[0])
	if err != nil {
		return err
	}
	a.printFileInfo(info)
	return nil
}

func (a *App) Find(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("find <hash>")
	}
	info, err := a.files.Find(ctx, strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	a.printFileInfo(info)
	return nil
}

func (a *App) printFileInfo(info *models.FileInfo) {
	fmt.Fprintf(a.out, "ID:           %s\n", info.ID)
	fmt.Fprintf(a.out, "Name:         %s\n", info.FileName)
	fmt.Fprintf(a.out, "Content type: %s\n", info.ContentType)
	fmt.Fprintf(a.out, "Size:         %d\n", info.Size)
	fmt.Fprintf(a.out, "Hash:         %s\n", info.Hash)
}

func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("download <file_id> <dest>")
	}
	path, n, err := a.files.Download(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", n, path)
	return nil
}
