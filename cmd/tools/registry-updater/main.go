// Command registry-updater maintains configs/activity-registry.json.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"artisan-workers/internal/common/errors"
	"artisan-workers/pkg/registry"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "registry-updater:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "registry-updater",
		Usage:  "Maintain the activity registry of the artisan workers",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Path to registry file",
				Value:   registry.DefaultPath,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List registered activities",
				Action: listCommand,
			},
			{
				Name:   "add",
				Usage:  "Add a new activity to the registry",
				Action: addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Activity ID (e.g., rank-artisans)", Required: true},
					&cli.StringFlag{Name: "display-name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "description", Usage: "Description", Required: true},
					&cli.StringFlag{Name: "category", Usage: "Category", Value: "artisan"},
					&cli.StringFlag{Name: "task-type", Usage: "Zeebe task type, defaults to the ID"},
					&cli.StringFlag{Name: "version", Value: "1.0.0"},
					&cli.StringFlag{Name: "status", Usage: "Implementation status (planned, in-progress, completed, verified)", Value: "planned"},
					&cli.StringFlag{Name: "timeout", Value: "10s"},
					&cli.StringSliceFlag{Name: "error-code", Usage: "BPMN error code thrown by the worker (repeatable)"},
				},
			},
			{
				Name:      "update",
				Usage:     "Update a field of an existing activity",
				ArgsUsage: "<id> <field> <value>",
				Action:    updateCommand,
			},
			{
				Name:   "validate",
				Usage:  "Validate the registry file",
				Action: validateCommand,
			},
		},
	}
}

// knownErrorCodes are the codes a BPMN boundary event can catch.
func knownErrorCodes() []string {
	codes := make([]string, 0, len(errors.BPMNErrorMapping))
	for _, bpmn := range errors.BPMNErrorMapping {
		codes = append(codes, bpmn)
	}
	sort.Strings(codes)
	return codes
}

func listCommand(c *cli.Context) error {
	reg, err := registry.LoadRegistry(c.String("path"))
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK TYPE\tSTATUS\tTIMEOUT\tRETRIES\tERROR CODES")
	for _, a := range reg.Activities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\n", a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries, a.ErrorCodes)
	}
	return w.Flush()
}

func addCommand(c *cli.Context) error {
	path := c.String("path")
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = registry.New()
	}

	taskType := c.String("task-type")
	if taskType == "" {
		taskType = c.String("id")
	}
	codes := c.StringSlice("error-code")
	if codes == nil {
		codes = []string{}
	}

	retries := 0
	for _, code := range codes {
		retries = max(retries, errors.GetRetryCount(errors.ErrorCode(code)))
	}

	activity := registry.Activity{
		ID:                   c.String("id"),
		DisplayName:          c.String("display-name"),
		Description:          c.String("description"),
		Category:             c.String("category"),
		Version:              c.String("version"),
		TaskType:             taskType,
		ImplementationStatus: c.String("status"),
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           codes,
		Timeout:              c.String("timeout"),
		Retries:              retries,
		Workflows:            []string{},
		Tags:                 []string{},
	}
	if err := reg.Add(activity); err != nil {
		return err
	}
	if err := reg.Validate(knownErrorCodes()); err != nil {
		return fmt.Errorf("activity rejected: %w", err)
	}
	if err := reg.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Added activity: %s\n", activity.ID)
	return nil
}

func updateCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("expected <id> <field> <value>, got %d arguments", c.NArg())
	}
	id, field, value := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

	path := c.String("path")
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Update(id, field, value); err != nil {
		return err
	}
	if err := reg.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Updated activity %s, field %s to %s\n", id, field, value)
	return nil
}

func validateCommand(c *cli.Context) error {
	reg, err := registry.LoadRegistry(c.String("path"))
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(knownErrorCodes()); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}
