package generator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

// assetCopyStats separates fresh writes from entries the previous manifest
// already covered.
type assetCopyStats struct {
	Copied  int
	Skipped int
}

// copyStaticAssets mirrors the site asset tree into the published output
// under assets/. Unchanged files (same checksum at the same destination in
// the previous manifest) are carried forward without a write.
func (s *service) copyStaticAssets(ctx context.Context, writer artifactWriter, previous, next *buildManifest) (assetCopyStats, error) {
	stats := assetCopyStats{}
	if s.deps.Assets == nil {
		return stats, nil
	}

	dirCache := map[string]struct{}{}
	err := fs.WalkDir(s.deps.Assets, ".", func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && entry != "." {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		payload, err := fs.ReadFile(s.deps.Assets, entry)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", entry, err)
		}

		output := joinOutputPath(s.cfg.OutputDir, path.Join("assets", entry))
		copied, err := s.writeAsset(ctx, writer, dirCache, previous, next, assetWrite{
			source:   entry,
			output:   output,
			payload:  payload,
			category: categoryAsset,
		})
		if err != nil {
			return err
		}
		if copied {
			stats.Copied++
		} else {
			stats.Skipped++
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("generator: copy assets: %w", err)
	}
	return stats, nil
}

// copyThemeAssets copies the files the selected theme manifest declares,
// preserving their manifest-relative paths in the output tree.
func (s *service) copyThemeAssets(ctx context.Context, writer artifactWriter, selection *gotheme.Selection, themePath string, previous, next *buildManifest) (assetCopyStats, error) {
	stats := assetCopyStats{}
	assets := collectThemeAssets(selection)
	if len(assets) == 0 {
		return stats, nil
	}

	themeFS := os.DirFS(themePath)
	dirCache := map[string]struct{}{}
	for _, asset := range assets {
		payload, err := fs.ReadFile(themeFS, asset)
		if err != nil {
			return stats, fmt.Errorf("generator: read theme asset %s: %w", asset, err)
		}

		output := joinOutputPath(s.cfg.OutputDir, asset)
		copied, err := s.writeAsset(ctx, writer, dirCache, previous, next, assetWrite{
			source:   path.Join(themePath, asset),
			output:   output,
			payload:  payload,
			category: categoryAsset,
		})
		if err != nil {
			return stats, err
		}
		if copied {
			stats.Copied++
		} else {
			stats.Skipped++
		}
	}
	return stats, nil
}

type assetWrite struct {
	source   string
	output   string
	payload  []byte
	category writeCategory
}

func (s *service) writeAsset(ctx context.Context, writer artifactWriter, dirCache map[string]struct{}, previous, next *buildManifest, req assetWrite) (bool, error) {
	checksum := computeHash(req.payload)
	entry := manifestAsset{
		Source:   req.source,
		Output:   req.output,
		Checksum: checksum,
		Size:     int64(len(req.payload)),
	}
	next.recordAsset(req.output, entry)

	if previous != nil {
		if prev, ok := previous.Assets[req.output]; ok && prev.Checksum == checksum {
			return false, nil
		}
	}

	if err := ensureDir(ctx, writer, dirCache, path.Dir(req.output)); err != nil {
		return false, err
	}
	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:        req.output,
		Content:     strings.NewReader(string(req.payload)),
		Size:        entry.Size,
		Category:    req.category,
		ContentType: detectAssetContentType(req.output),
		Checksum:    checksum,
	}); err != nil {
		return false, fmt.Errorf("generator: write asset %s: %w", req.output, err)
	}
	return true, nil
}

func collectThemeAssets(selection *gotheme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	assets := selection.Manifest.Assets.Files
	if variant := strings.TrimSpace(selection.Variant); variant != "" {
		if v, ok := selection.Manifest.Variants[variant]; ok && len(v.Assets.Files) > 0 {
			merged := make(map[string]string, len(selection.Manifest.Assets.Files)+len(v.Assets.Files))
			for key, file := range selection.Manifest.Assets.Files {
				merged[key] = file
			}
			for key, file := range v.Assets.Files {
				merged[key] = file
			}
			assets = merged
		}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, asset := range assets {
		asset = strings.TrimPrefix(strings.TrimSpace(asset), "/")
		if asset == "" {
			continue
		}
		if _, ok := seen[asset]; ok {
			continue
		}
		seen[asset] = struct{}{}
		out = append(out, filepath.ToSlash(asset))
	}
	sort.Strings(out)
	return out
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	case "txt":
		return "text/plain"
	case "xml":
		return "application/xml"
	case "woff":
		return "font/woff"
	case "woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
