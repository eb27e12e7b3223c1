package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cathub/internal/media"
	"cathub/internal/metadata"
)

// Action is the decision taken for one raw file.
type Action string

const (
	ActionEncodeVideo Action = "encode_video"
	ActionEncodeImage Action = "encode_image"
	ActionCopy        Action = "copy"
	ActionReuse       Action = "reuse"
	ActionSkip        Action = "skip"
)

// Actions lists every action in display order.
var Actions = []Action{ActionEncodeVideo, ActionEncodeImage, ActionCopy, ActionReuse, ActionSkip}

// Item is the planned handling of one raw file.
type Item struct {
	Source string
	Output string
	Kind   media.Kind
	Action Action
	// Reason explains a skip.
	Reason string

	SourceModTime time.Time
	SourceSize    int64
}

// Registers reports whether the item contributes its output to the file list
// when it completes successfully.
func (i Item) Registers() bool {
	return i.Action != ActionSkip
}

// Plan is the read-only view of what a Run would do.
type Plan struct {
	InputDir     string
	OutputDir    string
	MetadataPath string
	// InputMissing means a Run would only create the input folder.
	InputMissing bool
	Items        []Item
	// Prune lists output files a Run would delete, assuming every encode
	// succeeds.
	Prune          []string
	MetadataStatus metadata.LoadStatus
	// Dropped lists assignments a Run would remove.
	Dropped []string
}

// Count returns how many items carry the given action.
func (p Plan) Count(action Action) int {
	n := 0
	for _, item := range p.Items {
		if item.Action == action {
			n++
		}
	}
	return n
}

// Outputs returns the sorted output names a fully successful Run registers.
func (p Plan) Outputs() []string {
	outputs := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		if item.Registers() {
			outputs = append(outputs, item.Output)
		}
	}
	sort.Strings(outputs)
	return outputs
}

// Plan inspects the folders and metadata without modifying anything.
func (p *Pipeline) Plan(ctx context.Context) (Plan, error) {
	plan := Plan{InputDir: p.inputDir, OutputDir: p.outputDir, MetadataPath: p.metadataPath}

	exists, err := dirExists(p.inputDir)
	if err != nil {
		return plan, err
	}
	if !exists {
		plan.InputMissing = true
		return plan, nil
	}

	items, err := p.planItems(ctx)
	if err != nil {
		return plan, err
	}
	plan.Items = items

	keep := toSet(plan.Outputs())
	prune, err := pruneCandidates(p.outputDir, keep)
	if err != nil {
		return plan, err
	}
	plan.Prune = prune

	loaded, err := metadata.Load(p.metadataPath, p.defaultTags)
	if err != nil {
		return plan, err
	}
	plan.MetadataStatus = loaded.Status
	plan.Dropped = loaded.Document.Reconcile(plan.Outputs())
	return plan, nil
}

func (p *Pipeline) planItems(ctx context.Context) ([]Item, error) {
	entries, err := os.ReadDir(p.inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	claimed := make(map[string]string)
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if media.IsHidden(name) {
			continue
		}
		sourcePath := filepath.Join(p.inputDir, name)
		info, err := os.Stat(sourcePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				items = append(items, Item{Source: name, Action: ActionSkip, Reason: "dangling symlink"})
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		if info.IsDir() {
			continue
		}

		output, kind := p.classifier.OutputName(name)
		item := Item{
			Source:        name,
			Output:        output,
			Kind:          kind,
			SourceModTime: info.ModTime(),
			SourceSize:    info.Size(),
		}
		switch {
		case kind == media.KindUnsupported:
			item.Action = ActionSkip
			item.Reason = "unsupported extension"
		case claimed[output] != "":
			item.Action = ActionSkip
			item.Reason = fmt.Sprintf("output %s already produced by %s", output, claimed[output])
		default:
			claimed[output] = name
			action, err := p.decide(item)
			if err != nil {
				return nil, err
			}
			item.Action = action
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *Pipeline) decide(item Item) (Action, error) {
	outInfo, err := os.Stat(filepath.Join(p.outputDir, item.Output))
	missing := false
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat output %s: %w", item.Output, err)
		}
		missing = true
	}

	switch item.Kind {
	case media.KindPassthroughImage:
		if missing || copyNeeded(item.SourceModTime, outInfo.ModTime()) {
			return ActionCopy, nil
		}
	case media.KindVideo:
		if missing || transcodeNeeded(item.SourceModTime, outInfo.ModTime()) {
			return ActionEncodeVideo, nil
		}
	case media.KindConvertibleImage:
		if missing || transcodeNeeded(item.SourceModTime, outInfo.ModTime()) {
			return ActionEncodeImage, nil
		}
	}
	return ActionReuse, nil
}

// transcodeNeeded reports whether an existing transcoded output is stale. An
// output at least as new as its source is current.
func transcodeNeeded(source, output time.Time) bool {
	return output.Before(source)
}

// copyNeeded reports whether an existing passthrough copy is stale. Only a
// strictly newer source triggers a copy.
func copyNeeded(source, output time.Time) bool {
	return source.After(output)
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", path)
	}
	return true, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
