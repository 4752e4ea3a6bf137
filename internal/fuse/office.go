package fuse

import (
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Pedrokostam/PDFuse/internal/params"
	"github.com/Pedrokostam/PDFuse/internal/utils"
)

// OfficeTask is the optional background conversion worker: office documents
// go through the external converter and the produced PDFs are parsed like
// any other. The zero-work cases never spawn a goroutine.
type OfficeTask struct {
	task utils.OptionalTask[IndexedResult]
}

// StartOfficeConversion launches the batch conversion in the background.
// With no office inputs or no converter configured, the task is a no-op
// whose Join returns an empty vector.
func StartOfficeConversion(paths []utils.Indexed[string], p params.Parameters, progress *utils.Progress) OfficeTask {
	if len(paths) == 0 || !p.HasConverter() {
		return OfficeTask{task: utils.NoTask[IndexedResult]()}
	}
	return OfficeTask{task: utils.StartTask(func() []IndexedResult {
		return convertAndLoad(paths, p, progress)
	})}
}

// Join waits for the worker and returns its results, order preserved.
func (t OfficeTask) Join() []IndexedResult {
	return t.task.Join()
}

// Running reports whether a background worker exists.
func (t OfficeTask) Running() bool { return t.task.Running() }

func convertAndLoad(paths []utils.Indexed[string], p params.Parameters, progress *utils.Progress) []IndexedResult {
	scratch, err := utils.CreateTempDir()
	if err != nil {
		out := make([]IndexedResult, len(paths))
		for i, path := range paths {
			out[i] = errResult(path.Index(), &DocumentLoadError{Path: path.Value(), Io: err})
		}
		return out
	}
	out := make([]IndexedResult, 0, len(paths))
	for i, path := range paths {
		converted, convErr := convertDocumentToPdf(path.Value(), p.LibreOfficePath, scratch)
		if convErr != nil {
			log.WithField("path", path.Value()).WithError(convErr).Error("office conversion failed")
			out = append(out, errResult(path.Index(), &DocumentLoadError{Path: path.Value(), Conversion: convErr}))
			progress.Step("convert", i+1, len(paths))
			continue
		}
		doc, loadErr := LoadDocument(converted)
		if loadErr != nil {
			out = append(out, errResult(path.Index(), loadErr))
		} else {
			out = append(out, okDocument(path.Index(), doc))
		}
		progress.Step("convert", i+1, len(paths))
	}
	return out
}

// convertDocumentToPdf invokes the external converter with the fixed
// argument shape and predicts the produced file name: the input's stem with
// a .pdf extension inside the scratch directory.
func convertDocumentToPdf(documentPath, converterPath, outputDir string) (string, *ConversionError) {
	stem := strings.TrimSuffix(filepath.Base(documentPath), filepath.Ext(documentPath))
	predicted := filepath.Join(outputDir, stem+".pdf")

	cmd := exec.Command(converterPath,
		"--headless", "--convert-to", "pdf", documentPath, "--outdir", outputDir)
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", &ConversionError{Path: documentPath, ExitCode: exitErr.ExitCode()}
		}
		return "", &ConversionError{Path: documentPath, Err: err}
	}
	return predicted, nil
}
