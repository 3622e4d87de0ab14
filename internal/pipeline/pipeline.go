package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dgallion1/boardkin/internal/board"
	"github.com/dgallion1/boardkin/internal/config"
	"github.com/dgallion1/boardkin/internal/document"
	"github.com/dgallion1/boardkin/internal/ner"
	"github.com/dgallion1/boardkin/internal/parser"
	"github.com/dgallion1/boardkin/internal/relation"
	"github.com/dgallion1/boardkin/internal/tables"
)

// Stage names reported while a document is processed.
const (
	StageParsing    = "parsing"
	StageLocating   = "locating_tables"
	StageExtracting = "extracting_tables"
	StageStitching  = "stitching_tables"
	StageFiltering  = "filtering_members"
	StageMatching   = "matching_segments"
	StageRecognize  = "recognizing_persons"
	StageTagging    = "tagging_relations"
)

// Stats counts what each stage produced for one document.
type Stats struct {
	Pages          int `json:"pages"`
	CandidatePages int `json:"candidate_pages"`
	RawTables      int `json:"raw_tables"`
	LogicalTables  int `json:"logical_tables"`
	BoardMembers   int `json:"board_members"`
	Segments       int `json:"segments"`
	Duplets        int `json:"duplets"`
	Triplets       int `json:"triplets"`
}

// Result is the output of one pipeline run.
type Result struct {
	Triplets     []document.FamilialTriplet `json:"triplets"`
	BoardMembers []map[string]string        `json:"board_members"`
	Stats        Stats                      `json:"stats"`
}

// Options configures a Pipeline.
type Options struct {
	Params    *config.Params
	Extractor tables.Extractor

	// Recognizer finds persons in segments. When nil, a dictionary
	// recognizer over the document's board-member names is used.
	Recognizer ner.Recognizer

	// Parser overrides extension-based parser selection.
	Parser parser.Parser

	FallbackPdftotext bool
	Log               *slog.Logger
}

// Pipeline extracts familial relations between board members from one
// document at a time. It holds no per-document state, so Run may be called
// concurrently.
type Pipeline struct {
	params     *config.Params
	extractor  tables.Extractor
	recognizer ner.Recognizer
	parser     parser.Parser
	parseOpts  parser.Options
	log        *slog.Logger
}

func New(opts Options) (*Pipeline, error) {
	if opts.Params == nil {
		return nil, fmt.Errorf("pipeline: params are required")
	}
	if opts.Params.Positions() == nil {
		if err := opts.Params.Validate(); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	if opts.Extractor == nil {
		return nil, fmt.Errorf("pipeline: table extractor is required")
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Pipeline{
		params:     opts.Params,
		extractor:  opts.Extractor,
		recognizer: opts.Recognizer,
		parser:     opts.Parser,
		parseOpts: parser.Options{
			FallbackPdftotext: opts.FallbackPdftotext,
			Normalization:     opts.Params.Normalization,
		},
		log: opts.Log,
	}, nil
}

// Run processes the document at path.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	return p.RunWithProgress(ctx, path, nil)
}

// RunWithProgress is Run, calling onStage as each stage begins. A stage that
// yields nothing ends the run early with an empty result and no error.
func (p *Pipeline) RunWithProgress(ctx context.Context, path string, onStage func(stage string)) (*Result, error) {
	log := p.log.With("file", filepath.Base(path))
	stage := func(name string) {
		if onStage != nil {
			onStage(name)
		}
	}
	res := &Result{
		Triplets:     []document.FamilialTriplet{},
		BoardMembers: []map[string]string{},
	}

	nameHeader := p.params.TableColumnNames.Name.Chinese
	positionHeader := p.params.TableColumnNames.Position.Chinese

	// Pages
	stage(StageParsing)
	idx, err := p.parse(path)
	if err != nil {
		return nil, p.fail(log, StageParsing, err)
	}
	res.Stats.Pages = idx.Len()

	// Candidate pages
	stage(StageLocating)
	candidates := tables.CandidatePages(idx, nameHeader, positionHeader)
	res.Stats.CandidatePages = len(candidates)
	if len(candidates) == 0 {
		log.Info("no candidate pages", "pages", idx.Len())
		return res, nil
	}

	// Raw tables
	stage(StageExtracting)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cache := tables.NewPageCache(p.extractor, path)
	raw, err := cache.Extract(ctx, candidates)
	if err != nil {
		return nil, p.fail(log, StageExtracting, err)
	}
	res.Stats.RawTables = len(raw)
	if len(raw) == 0 {
		log.Info("no tables on candidate pages", "candidates", candidates)
		return res, nil
	}

	// Logical tables
	stage(StageStitching)
	stitcher := tables.NewStitcher(nameHeader, positionHeader, p.params.OptimalPDFPageHeight)
	logical, err := stitcher.Stitch(ctx, raw, cache.Lookup, idx.Len())
	if err != nil {
		return nil, p.fail(log, StageStitching, err)
	}
	res.Stats.LogicalTables = len(logical)
	if len(logical) == 0 {
		log.Info("no member tables found", "raw_tables", len(raw))
		return res, nil
	}

	// Board members
	stage(StageFiltering)
	filter := board.Filter{
		NameColumn:     nameHeader,
		PositionColumn: positionHeader,
		Positions:      p.params.Positions(),
	}
	members := filter.Members(logical)
	res.Stats.BoardMembers = len(members)
	res.BoardMembers = board.Records(members,
		p.params.TableColumnNames.Name.English,
		p.params.TableColumnNames.Position.English)
	names := board.UniqueNames(members)
	if len(names) == 0 {
		log.Info("no board members found", "tables", len(logical))
		return res, nil
	}

	// Segments
	stage(StageMatching)
	segments := relation.MatchSegments(idx.Texts(), names)
	res.Stats.Segments = len(segments)
	if len(segments) == 0 {
		log.Info("no segments mention board members", "members", len(names))
		return res, nil
	}

	// Person pairs
	stage(StageRecognize)
	recognizer := p.recognizer
	if recognizer == nil {
		recognizer = ner.NewDictionaryRecognizer(names, p.params.PersonLabel)
	}
	extractor := relation.PairExtractor{Recognizer: recognizer, PersonLabel: p.params.PersonLabel}
	paired, err := extractor.Extract(ctx, segments)
	if err != nil {
		return nil, p.fail(log, StageRecognize, err)
	}
	if len(paired) != len(segments) {
		return nil, p.fail(log, StageRecognize, fmt.Errorf("%d segments paired from %d texts: %w",
			len(paired), len(segments), document.ErrAlignment))
	}
	res.Stats.Duplets = relation.Duplets(paired)
	if res.Stats.Duplets == 0 {
		log.Info("no segment has exactly two persons", "segments", len(segments))
		return res, nil
	}

	// Triplets
	stage(StageTagging)
	tagger := relation.Tagger{Gazetteer: p.params.FamilialGazetteer, Placeholder: p.params.PersonLabel}
	if triplets := tagger.Tag(paired); len(triplets) > 0 {
		res.Triplets = triplets
	}
	res.Stats.Triplets = len(res.Triplets)

	log.Info("document processed",
		"pages", res.Stats.Pages,
		"members", res.Stats.BoardMembers,
		"segments", res.Stats.Segments,
		"duplets", res.Stats.Duplets,
		"triplets", res.Stats.Triplets,
	)
	return res, nil
}

func (p *Pipeline) parse(path string) (*document.PageIndex, error) {
	pr := p.parser
	if pr == nil {
		var err error
		pr, err = parser.ForFile(path, p.parseOpts)
		if err != nil {
			return nil, err
		}
	}
	return pr.Parse(path)
}

func (p *Pipeline) fail(log *slog.Logger, stage string, err error) error {
	log.Error("pipeline failed", "stage", stage, "error", err)
	return fmt.Errorf("%s: %w", stage, err)
}
