package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/grit/internal/annotation"
	"github.com/inodb/grit/internal/output"
	"github.com/inodb/grit/internal/query"
	"github.com/inodb/grit/internal/shell"
	"github.com/inodb/grit/internal/store"
	"github.com/inodb/grit/internal/validate"
)

// runValidate loads the file, validates it and, if it is clean, hands the
// table to the query shell.
func (a *app) runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	path := a.v.GetString("file")
	if path == "" {
		fmt.Fprintln(out, description)
		return nil
	}

	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return &usageError{msg: fmt.Sprintf("File does not exist! (%s)", path)}
	}

	mode, err := validate.ParseMode(a.v.GetString("mode"))
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	backend := a.v.GetString("backend")
	if err := checkBackend(backend); err != nil {
		return err
	}

	fmt.Fprintln(out, "Validating data now!")
	fmt.Fprintln(out)

	table, err := annotation.Load(path)
	if err != nil {
		return err
	}
	a.logger.Info("loaded annotation file", zap.String("path", path), zap.Int("rows", table.Len()))

	v := validate.New(mode)
	v.SetLogger(a.logger)
	var errLog *validate.FileLog
	if logPath := a.v.GetString("error_log"); logPath != "" && mode == validate.CollectAll {
		errLog = validate.NewFileLog(logPath)
		v.SetErrorLog(errLog)
	}

	report, err := v.Validate(table)
	if err != nil {
		if errors.Is(err, validate.ErrFieldValidation) {
			return fmt.Errorf("validation aborted: %w", err)
		}
		return err
	}

	output.WriteValidationSummary(out, report)
	if !report.OK() {
		fmt.Fprintln(out, "Please correct your data and try again.")
		if errLog != nil {
			fmt.Fprintf(out, "Details were appended to %s.\n", errLog.Path())
		}
		return fmt.Errorf("%d invalid values in %s", report.Total(), path)
	}

	fmt.Fprintln(out)
	if err := output.WriteTable(out, table); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	fmt.Fprintln(out)

	q, closeFn, err := a.openQuerier(cmd, table, backend)
	if err != nil {
		return err
	}
	defer closeFn()

	sh := shell.New(cmd.InOrStdin(), out, q)
	sh.SetMaxAttempts(a.v.GetInt("max_attempts"))
	sh.SetLogger(a.logger)
	return sh.Run(cmd.Context())
}

// openQuerier returns the query backend for a validated table.
func (a *app) openQuerier(cmd *cobra.Command, table *annotation.Table, backend string) (query.Querier, func(), error) {
	if backend == "memory" {
		return query.NewMemory(table), func() {}, nil
	}

	dbPath := a.v.GetString("db")
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Load(cmd.Context(), table); err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("load duckdb: %w", err)
	}
	n, err := s.Count()
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	a.logger.Info("loaded table into duckdb", zap.String("db", dbPath), zap.Int("rows", n))

	return s, func() {
		if err := s.Close(); err != nil {
			a.logger.Warn("close duckdb", zap.Error(err))
		}
	}, nil
}

// checkBackend rejects query backends other than memory and duckdb.
func checkBackend(name string) error {
	if name != "memory" && name != "duckdb" {
		return &usageError{msg: fmt.Sprintf("unknown backend %q (want memory or duckdb)", name)}
	}
	return nil
}
