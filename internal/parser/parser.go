package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"anchor-rag/internal/config"
	"anchor-rag/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Parser interface {
	ParseFile(filePath string) ([]models.Chunk, error)
}

// FileParser splits documents into chunks of rendered HTML.
type FileParser struct {
	ChunkSize    int
	ChunkOverlap int
	md           goldmark.Markdown
}

const (
	defaultChunkSize    = 1000 // bytes
	defaultChunkOverlap = 200  // bytes
	defaultPageNumber   = 1
)

// page is the raw text of one page, slide or sheet.
type page struct {
	number int
	text   string
}

func New(cfg *config.RAGConfig) *FileParser {
	p := &FileParser{
		ChunkSize:    defaultChunkSize,
		ChunkOverlap: defaultChunkOverlap,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
	if cfg != nil && cfg.ChunkSize > 0 {
		p.ChunkSize = cfg.ChunkSize
		if cfg.ChunkOverlap >= 0 && cfg.ChunkOverlap < cfg.ChunkSize {
			p.ChunkOverlap = cfg.ChunkOverlap
		}
	}
	return p
}

// ParseFile dispatches on the file extension.
func (p *FileParser) ParseFile(filePath string) ([]models.Chunk, error) {
	var (
		pages []page
		err   error
	)

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		pages, err = parsePDF(filePath)
	case ".docx":
		pages, err = parseDOCX(filePath)
	case ".pptx":
		pages, err = parsePPTX(filePath)
	case ".xlsx":
		pages, err = parseXLSX(filePath)
	case ".ods", ".xlsm":
		pages, err = parseODS(filePath)
	case ".txt", ".md":
		pages, err = parseText(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}

	var chunks []models.Chunk
	for _, pg := range pages {
		c, err := p.getChunks(pg.text, pg.number)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c...)
	}
	return chunks, nil
}

func parsePDF(filePath string) ([]page, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Get file size for reader initialization
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var pages []page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		pg := reader.Page(i)
		if pg.V.IsNull() {
			continue
		}
		pageText, err := pg.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page{number: i, text: pageText})
	}
	return pages, nil
}

func parseDOCX(filePath string) ([]page, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	paragraphs := strings.Split(content, "\n")
	kept := paragraphs[:0]
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	// DOCX has no page numbers
	return []page{{number: defaultPageNumber, text: strings.Join(kept, "\n\n")}}, nil
}

func parsePPTX(filePath string) ([]page, error) {
	f, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var slides []*zip.File
	for _, file := range f.File {
		if strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml") {
			slides = append(slides, file)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	var pages []page
	for i, file := range slides {
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		pages = append(pages, page{number: i + 1, text: extractTextFromXML(string(data))})
	}
	return pages, nil
}

// slideNumber extracts N from "ppt/slides/slideN.xml".
func slideNumber(name string) int {
	var n int
	fmt.Sscanf(strings.TrimPrefix(name, "ppt/slides/slide"), "%d", &n)
	return n
}

func parseXLSX(filePath string) ([]page, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}

	var pages []page
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, page{number: sheetNum + 1, text: text.String()})
	}
	return pages, nil
}

func parseODS(filePath string) ([]page, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []page
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, page{number: sheetNum + 1, text: text.String()})
	}
	return pages, nil
}

func parseText(filePath string) ([]page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return []page{{number: defaultPageNumber, text: string(data)}}, nil
}

// renderHTML converts a markdown chunk to an HTML fragment.
func (p *FileParser) renderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return strings.Trim(buf.String(), " \t\n\r"), nil
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		endIdx := strings.Index(part, "</a:t>")
		if endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

// chunk content into chunks of at most maxChars runes, each starting
// overlapChars runes before the previous one ended
func chunkContent(content string, maxChars, overlapChars int) []string {
	// Handle edge cases
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}

	runes := []rune(strings.TrimSpace(content))
	contentLen := len(runes)
	if contentLen == 0 {
		return nil
	}

	if contentLen <= maxChars {
		return []string{string(runes)}
	}

	var chunks []string
	start := 0
	for start < contentLen {
		end := min(start+maxChars, contentLen)

		// Look for a space or punctuation within the last 10% of the chunk
		if end < contentLen {
			lookBack := min(maxChars/10, end-start)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if runes[i] == ' ' || runes[i] == '\n' || runes[i] == '.' {
					end = i + 1
					break
				}
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= contentLen {
			break
		}

		// the next chunk starts from the break point, never past it
		start = max(end-overlapChars, start+1)
	}

	return chunks
}

// get chunks from content and page number
func (p *FileParser) getChunks(content string, pageNumber int) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for _, text := range chunkContent(content, p.ChunkSize, p.ChunkOverlap) {
		rendered, err := p.renderHTML(text)
		if err != nil {
			return nil, err
		}
		if rendered == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Content:    rendered,
			PageNumber: pageNumber,
			ChunkID:    len(chunks) + 1,
		})
	}
	return chunks, nil
}
