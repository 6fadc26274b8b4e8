// Package metadata derives coin metadata from a post and uploads it to
// content storage.
package metadata

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"

	"zoblogs/internal/ipfs"
	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/structures"
)

const (
	descriptionLimit  = 200
	placeholderLimit  = 20
	symbolTitleLength = 4
	placeholderName   = "placeholder.svg"
	placeholderType   = "image/svg+xml"
)

type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

type BuildInput struct {
	Title   string
	Content string
	Author  string
	Image   *Image
}

type Result struct {
	Metadata models.CoinMetadata
	URI      string
}

type BuilderInterface interface {
	Build(ctx context.Context, in BuildInput) (*Result, error)
}

type Builder struct {
	platformName string
	storage      ipfs.ClientInterface
	logger       providers.Logger
}

func NewBuilder(conf *structures.Config, storage ipfs.ClientInterface, logger providers.Logger) BuilderInterface {
	return &Builder{
		platformName: conf.Platform.Name,
		storage:      storage,
		logger:       logger,
	}
}

// Build uploads the image (or a generated placeholder) and then the metadata
// document. Nothing is retried; an image pinned before a failed document
// upload is left in place.
func (b *Builder) Build(ctx context.Context, in BuildInput) (*Result, error) {
	symbol := GenerateCoinSymbol(in.Title, in.Author)

	img := in.Image
	if img == nil || len(img.Data) == 0 {
		b.logger.Debugf(providers.TypePost, "No image provided for %q, using placeholder", in.Title)
		img = &Image{Name: placeholderName, ContentType: placeholderType, Data: PlaceholderImage(in.Title)}
	}

	imageCid, err := b.storage.PinFile(ctx, img.Name, img.ContentType, img.Data)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	meta := models.CoinMetadata{
		Name:        models.CoinName(in.Title),
		Symbol:      symbol,
		Description: BuildDescription(in.Content, b.platformName),
		Image:       ipfs.URI(imageCid),
	}

	cid, err := b.storage.PinJSON(ctx, symbol+"-metadata.json", meta)
	if err != nil {
		return nil, fmt.Errorf("upload metadata: %w", err)
	}

	b.logger.Infof(providers.TypePost, "Uploaded metadata for %s: %s", symbol, cid)
	return &Result{Metadata: meta, URI: ipfs.URI(cid)}, nil
}

// GenerateCoinSymbol takes the first four alphanumeric characters of title
// and characters 2..6 of author, both upper-cased. Collisions are possible.
func GenerateCoinSymbol(title, author string) string {
	var sb strings.Builder
	for _, r := range title {
		if sb.Len() == symbolTitleLength {
			break
		}
		if isAlnum(r) {
			sb.WriteRune(r)
		}
	}

	authorPart := ""
	if len(author) > 2 {
		authorPart = author[2:min(len(author), 6)]
	}
	return strings.ToUpper(sb.String() + authorPart)
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func BuildDescription(content, platformName string) string {
	return truncate(content, descriptionLimit) + " | Published on " + platformName
}

// PlaceholderImage renders a 400x300 SVG card with the (shortened) title.
func PlaceholderImage(title string) []byte {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(truncate(title, placeholderLimit)))

	var buf bytes.Buffer
	buf.WriteString(`<svg width="400" height="300" xmlns="http://www.w3.org/2000/svg">`)
	buf.WriteString(`<rect width="400" height="300" fill="#f0f0f0"/>`)
	buf.WriteString(`<text x="200" y="150" text-anchor="middle" font-family="Arial, sans-serif" font-size="24" fill="#666">`)
	buf.Write(escaped.Bytes())
	buf.WriteString(`</text>`)
	buf.WriteString(`<text x="200" y="180" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" fill="#999">Blog Post</text>`)
	buf.WriteString(`</svg>`)
	return buf.Bytes()
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
