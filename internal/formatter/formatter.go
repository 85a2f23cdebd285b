// package formatter renders generated track lists as text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat resolves a format name, accepting "md" and "txt" as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Mix is a generated track list with the config that produced it.
type Mix struct {
	Title    string                  `json:"title"`
	Config   models.GenerationConfig `json:"config"`
	Tracks   []models.Track          `json:"tracks"`
	Playlist *models.PlaylistRef     `json:"playlist,omitempty"`
}

// Render dispatches to the exporter for f.
func Render(mix *Mix, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return ExportToText(mix)
	case FormatMarkdown:
		return ExportToMarkdown(mix, "")
	case FormatCSV:
		return ExportToCSV(mix)
	case FormatJSON:
		return shared.MarshalJSON(mix, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// ExportToCSV converts a Mix to CSV format with columns: ID, URI, Name, Artist, Album, Preview
func ExportToCSV(mix *Mix) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "URI", "Name", "Artist", "Album", "Preview"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range mix.Tracks {
		record := []string{track.ID, track.URI, track.Name, track.Artist, track.Album, track.PreviewURL}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Mix to Markdown format with optional cover image
func ExportToMarkdown(mix *Mix, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", mix.title())

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Source**: %s\n", mix.Config)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(mix.Tracks))
	if mix.Playlist != nil {
		fmt.Fprintf(&buf, "**Playlist**: [%s](%s)\n", mix.Playlist.Name, mix.Playlist.URL)
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range mix.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		preview := ""
		if track.HasPreview() {
			preview = fmt.Sprintf(" [preview](%s)", track.PreviewURL)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s%s\n", i+1, track.Artist, track.Name, albumPart, preview)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Mix to plain text format
func ExportToText(mix *Mix) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Mix: %s\n", mix.title())
	fmt.Fprintf(&buf, "Source: %s\n", mix.Config)
	if mix.Playlist != nil {
		fmt.Fprintf(&buf, "Playlist: %s\n", mix.Playlist.URL)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(mix.Tracks))

	for i, track := range mix.Tracks {
		buf.WriteString(TrackLine(i, track) + "\n")
	}

	return buf.Bytes(), nil
}

// TrackLine renders one numbered track. A ♪ marks tracks with a preview.
func TrackLine(i int, t models.Track) string {
	marker := " "
	if t.HasPreview() {
		marker = "♪"
	}
	return fmt.Sprintf("%2d. %s %s - %s", i+1, marker, t.Artist, t.Name)
}

func (m *Mix) title() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Config.String()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CoverURL returns the first track image, used as the Markdown cover.
func (m *Mix) CoverURL() string {
	for _, t := range m.Tracks {
		if t.Image != "" {
			return t.Image
		}
	}
	return ""
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport writes {base}_tracks.csv and {base}_metadata.json, the latter holding the
// config and playlist without tracks.
func WriteCSVExport(mix *Mix, base string) (*CSVExportResult, error) {
	if base == "" {
		base = "moodmix"
	}

	csvData, err := ExportToCSV(mix)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := base + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	meta := *mix
	meta.Tracks = nil
	metadataJSON, err := shared.MarshalJSON(meta, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when imageURL is set and downloads,
// {dir}/cover.jpg. A failed download is a warning, not an error.
func WriteMarkdownExport(mix *Mix, outputDir, imageURL string, warn io.Writer) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "moodmix"
	}
	if warn == nil {
		warn = io.Discard
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(warn, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(warn, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(mix, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a mix to plain text format, defaulting to moodmix_tracks.txt.
func WriteTextExport(mix *Mix, path string) (string, error) {
	if path == "" {
		path = "moodmix_tracks.txt"
	}

	textData, err := ExportToText(mix)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
