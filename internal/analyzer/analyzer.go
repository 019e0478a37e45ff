// Package analyzer reviews a "two fer" Python submission: it walks the parsed
// syntax tree for known stylistic and structural patterns, attaches raw
// style-checker output, derives a triage status and writes analysis.json.
package analyzer

import (
	"context"
	"errors"

	"ferlint/internal/config"
	"ferlint/internal/logging"
	"ferlint/internal/world"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Parser turns source text into a syntax tree.
type Parser interface {
	Parse(ctx context.Context, source []byte) (*world.Node, error)
}

// Result is the outcome of one analysis.
type Result struct {
	Comments    []string
	Approvable  bool
	StyleOutput []string
	Status      Status
}

// Options configures an Analyzer. Zero values select defaults; a nil
// SyntaxChecker or StyleChecker skips that pass.
type Options struct {
	Parser        Parser
	SyntaxChecker SyntaxChecker
	StyleChecker  StyleChecker
	ArtifactPath  string
	ExerciseFile  string
}

// Analyzer runs analyses. It holds no per-analysis state, so one value can
// serve any number of sequential Analyze calls.
type Analyzer struct {
	parser       Parser
	syntax       SyntaxChecker
	style        StyleChecker
	artifactPath string
	exerciseFile string
}

// New creates an Analyzer from opts.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		parser:       opts.Parser,
		syntax:       opts.SyntaxChecker,
		style:        opts.StyleChecker,
		artifactPath: opts.ArtifactPath,
		exerciseFile: opts.ExerciseFile,
	}
	if a.parser == nil {
		a.parser = world.NewPythonParser()
	}
	if a.artifactPath == "" {
		a.artifactPath = DefaultArtifactPath
	}
	if a.exerciseFile == "" {
		a.exerciseFile = "two_fer.py"
	}
	return a
}

// NewFromConfig wires the tree-sitter parser and, when enabled, the CPython
// syntax check and pylint.
func NewFromConfig(cfg *config.Config) *Analyzer {
	opts := Options{
		Parser:       world.NewPythonParser(),
		ArtifactPath: cfg.Output.ArtifactPath,
		ExerciseFile: cfg.Analyzer.ExerciseFile,
	}
	if cfg.Syntax.Enabled {
		opts.SyntaxChecker = NewPythonSyntaxChecker(nil, cfg.Syntax.Command, cfg.GetSyntaxTimeout())
	}
	if cfg.Style.Enabled {
		opts.StyleChecker = NewPylintChecker(nil, cfg.Style.Command, cfg.GetStyleTimeout(), cfg.Style.MaxOutputBytes)
	}
	return New(opts)
}

// ArtifactPath returns where Analyze writes its JSON document.
func (a *Analyzer) ArtifactPath() string { return a.artifactPath }

// Analyze reviews the submission at path. It never fails: unreadable and
// unparsable submissions become disapprovals, and a failing style checker
// leaves StyleOutput empty.
func (a *Analyzer) Analyze(ctx context.Context, path string) Result {
	timer := logging.StartTimer(logging.CategoryAnalyzer, "analysis")
	defer timer.Stop()

	log := logging.Get(logging.CategoryAnalyzer).With(zap.String("run_id", uuid.NewString()), zap.String("path", path))

	result := a.analyze(ctx, path, log)

	log.Infow("analysis complete",
		"status", result.Status,
		"approvable", result.Approvable,
		"comments", len(result.Comments))

	if err := WriteArtifact(a.artifactPath, result); err != nil {
		log.Warnw("could not write analysis artifact", "artifact", a.artifactPath, zap.Error(err))
	}
	return result
}

func (a *Analyzer) analyze(ctx context.Context, path string, log *zap.SugaredLogger) Result {
	resolved, source, err := a.acquireSource(path)
	if err != nil {
		log.Infow("submission not readable", zap.Error(err))
		return rejected(NoModule)
	}

	tree, err := a.parser.Parse(ctx, source)
	if err == nil {
		err = a.confirmSyntax(ctx, resolved, log)
	}
	if err != nil {
		merr := &MalformedSourceError{Path: resolved, Err: err}
		log.Infow("submission not parsable", zap.Error(merr))
		return rejected(MalformedCode)
	}

	state := newWalkState()
	world.Walk(tree, state.visit)
	approvable := state.finish()

	log.Debugw("walk finished",
		"has_function", state.hasFunction,
		"uses_default_argument", state.usesDefaultArgument,
		"has_return", state.hasReturn,
		"uses_format_method", state.usesFormatMethod,
		"uses_formatted_string_literal", state.usesFormattedStringLiteral)

	return Result{
		Comments:    state.comments.messages(),
		Approvable:  approvable,
		StyleOutput: a.styleOutput(ctx, resolved, log),
		Status:      deriveStatus(approvable, state.comments.empty(), state.usesOptimalFormatting()),
	}
}

// confirmSyntax returns an error only when the syntax checker rejects the
// file. A checker that cannot run leaves the tree-sitter verdict standing.
func (a *Analyzer) confirmSyntax(ctx context.Context, path string, log *zap.SugaredLogger) error {
	if a.syntax == nil {
		return nil
	}
	err := a.syntax.CheckSyntax(ctx, path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, world.ErrMalformedSource):
		return err
	case errors.Is(err, context.Canceled):
		log.Debugw("syntax check canceled", zap.Error(err))
	default:
		log.Warnw("syntax check unavailable; relying on the tree-sitter parse", zap.Error(err))
	}
	return nil
}

func (a *Analyzer) styleOutput(ctx context.Context, path string, log *zap.SugaredLogger) []string {
	if a.style == nil {
		return []string{}
	}
	out, err := a.style.Check(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debugw("style check canceled", zap.Error(err))
		} else {
			log.Warnw("style check failed; continuing without style output", zap.Error(err))
		}
		return []string{}
	}
	return []string{out}
}

func rejected(kind CommentKind) Result {
	return Result{
		Comments:    []string{kind.Message()},
		Approvable:  false,
		StyleOutput: []string{},
		Status:      StatusDisapproveWithComment,
	}
}
