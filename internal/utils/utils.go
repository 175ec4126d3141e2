package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// --- 1. Error Reporting ---

// ShowError prints the boxed error report used across facecam without exiting.
func ShowError(context string, err error) {
	writeError(os.Stderr, context, err)
}

// Die is the unified exit strategy for facecam.
// It prints a formatted error box and exits with status 1.
func Die(context string, err error) {
	ShowError(context, err)
	os.Exit(1)
}

type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Report shows the boxed error and returns err marked as already shown,
// so the command boundary does not print it a second time.
func Report(context string, err error) error {
	return report(os.Stderr, context, err)
}

func report(w io.Writer, context string, err error) error {
	writeError(w, context, err)
	return &reportedError{err: err}
}

// IsReported reports whether err already went through Report.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

func writeError(w io.Writer, context string, err error) {
	fmt.Fprintf(w, "\n---------------------------------------------------------\n")
	fmt.Fprintf(w, "🚨 FACECAM ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(w, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(w, "---------------------------------------------------------\n")
}

// --- 2. Model Files ---

// ErrMissingModels is returned when the dlib model directory is incomplete.
var ErrMissingModels = errors.New("missing face recognition models")

// ModelFiles are the dlib files go-face loads from the models directory.
var ModelFiles = []string{
	"shape_predictor_5_face_landmarks.dat",
	"dlib_face_recognition_resnet_model_v1.dat",
}

// CheckModelDir verifies every model file exists so the user gets one readable
// error instead of a failure from inside dlib.
func CheckModelDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingModels, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrMissingModels, dir)
	}

	var missing []string
	for _, name := range ModelFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w in %s: %s", ErrMissingModels, dir, strings.Join(missing, ", "))
	}
	return nil
}

// --- 3. Reference Folder ---

// ListImageFiles returns the regular files of dir sorted by name.
// Subdirectories and dotfiles (.DS_Store, .gitkeep) are skipped.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !e.Type().IsRegular() && e.Type()&os.ModeSymlink == 0 {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}
