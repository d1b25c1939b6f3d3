package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/AD1529/xapi-consolidate/internal/cleaning"
	"github.com/AD1529/xapi-consolidate/internal/compiler"
	"github.com/AD1529/xapi-consolidate/internal/engine"
)

// RuleSet is the result of loading CUE rule files from a directory.
type RuleSet struct {
	Classification []engine.Rule
	Cleaning       []cleaning.DropRule
	FileCount      int // Number of CUE files found
}

// LoadError represents an error that occurred during rule loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeBadRules    = "E007" // Rule compilation failed
)

// LoadRules loads and compiles CUE rule files from a directory. A directory
// may define "classification", "cleaning", both, or neither; absent tables
// come back nil and callers fall back to the built-in defaults.
func LoadRules(dir string) (*RuleSet, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing rules directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	result := &RuleSet{FileCount: len(cueFiles)}

	classVal := value.LookupPath(cue.ParsePath("classification"))
	if classVal.Exists() {
		rules, err := compiler.CompileClassification(classVal)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadRules, Message: fmt.Sprintf("classification: %v", err)}
		}
		result.Classification = rules
	}

	cleanVal := value.LookupPath(cue.ParsePath("cleaning"))
	if cleanVal.Exists() {
		rules, err := compiler.CompileCleaning(cleanVal)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadRules, Message: fmt.Sprintf("cleaning: %v", err)}
		}
		result.Cleaning = rules
	}

	if result.Classification == nil && result.Cleaning == nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no classification or cleaning rules found"}
	}

	return result, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
