package tui

import (
	"context"
	"errors"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/constr-tools/panelcfg/internal/api"
	"github.com/constr-tools/panelcfg/internal/calc"
	"github.com/constr-tools/panelcfg/internal/engine"
	"github.com/constr-tools/panelcfg/internal/options"
)

// loadStage starts the fetch for one engine load. Cancelled requests
// produce no message at all: supersession is not an error.
func loadStage(ctx context.Context, c *api.Client, l engine.Load) tea.Cmd {
	switch l.Stage {
	case engine.StageBrands:
		return func() tea.Msg {
			raw, err := c.Brands(ctx)
			if api.IsCanceled(err) {
				return nil
			}
			if err != nil {
				return brandsMsg{gen: l.Gen, err: err}
			}
			return brandsMsg{gen: l.Gen, opts: options.NormalizeBrands(raw)}
		}
	case engine.StageModels:
		return func() tea.Msg {
			raw, err := c.BrandParams(ctx, l.Brand)
			if api.IsCanceled(err) {
				return nil
			}
			if err != nil {
				return modelsMsg{gen: l.Gen, err: err}
			}
			return modelsMsg{gen: l.Gen, opts: options.ExtractModelList(raw)}
		}
	case engine.StageDependent:
		return func() tea.Msg {
			raw, err := c.ModelParams(ctx, l.Brand, l.Model)
			if api.IsCanceled(err) {
				return nil
			}
			if err != nil {
				return dependentMsg{gen: l.Gen, err: err}
			}
			return dependentMsg{gen: l.Gen, lists: options.ExtractDependentLists(raw)}
		}
	}
	return nil
}

// runCalculation starts a calculation for the stamped selection.
func runCalculation(ctx context.Context, c *api.Client, q api.CalcQuery, stamp calc.Stamp, gen int) tea.Cmd {
	return func() tea.Msg {
		raw, err := c.Calculate(ctx, q)
		if api.IsCanceled(err) {
			return nil
		}
		if errors.Is(err, api.ErrNotFound) {
			return calcMsg{gen: gen, stamp: stamp, notFound: true}
		}
		if err != nil {
			return calcMsg{gen: gen, stamp: stamp, errMsg: err.Error()}
		}
		return calcMsg{gen: gen, stamp: stamp, result: calc.ParseResult(raw)}
	}
}

// exportFile is where the spreadsheet export lands.
const exportFile = "calc.xlsx"

// runExport posts the selection and writes the spreadsheet next to the
// working directory.
func runExport(ctx context.Context, c *api.Client, p api.ExportPayload) tea.Cmd {
	return func() tea.Msg {
		data, err := c.ExportExcel(ctx, p)
		if err != nil {
			return exportMsg{err: err}
		}
		if err := os.WriteFile(exportFile, data, 0o644); err != nil {
			return exportMsg{err: err}
		}
		return exportMsg{path: exportFile}
	}
}

// copyShareLink copies the share URL to the system clipboard. A
// clipboard failure is not fatal: the URL travels back in the message
// so the UI can show it instead.
func copyShareLink(url string, warned bool) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(url)
		return shareMsg{url: url, warned: warned, err: err}
	}
}
