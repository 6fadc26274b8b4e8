package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/alitto/pond/v2"

	"zoblogs/internal/ipfs"
	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/registry"
)

const excerptLength = 100

var (
	whitespace = regexp.MustCompile(`\s`)
	cidPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,128}$`)
)

// LegacyServiceInterface covers posts stored as plain documents, without a
// coin.
type LegacyServiceInterface interface {
	Upload(ctx context.Context, doc models.PostDocument) (string, error)
	GetPost(ctx context.Context, cid string) (*models.PostDocument, error)
	Previews(ctx context.Context) []models.PostPreview
}

type LegacyService struct {
	storage  ipfs.ClientInterface
	registry registry.RegistryInterface
	logger   providers.Logger
	pool     pond.Pool
}

func NewLegacyService(storage ipfs.ClientInterface, reg registry.RegistryInterface, pool pond.Pool, logger providers.Logger) LegacyServiceInterface {
	return &LegacyService{
		storage:  storage,
		registry: reg,
		logger:   logger,
		pool:     pool,
	}
}

func (ls *LegacyService) Upload(ctx context.Context, doc models.PostDocument) (string, error) {
	if doc.Title == "" || doc.Content == "" {
		return "", fmt.Errorf("%w: title and content are required", ErrValidation)
	}

	cid, err := ls.storage.PinJSON(ctx, PinName(doc.Title), doc)
	if err != nil {
		ls.logger.Errorf(providers.TypePost, "Error uploading to IPFS: %s", err)
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	ls.logger.Infof(providers.TypePost, "Successfully pinned to IPFS: %s", cid)

	if err := ls.registry.AddPostCid(ctx, cid); err != nil {
		ls.logger.Errorf(providers.TypePost, "Pinned %s but failed to index it: %s", cid, err)
	}
	return cid, nil
}

func (ls *LegacyService) GetPost(ctx context.Context, cid string) (*models.PostDocument, error) {
	if !cidPattern.MatchString(cid) {
		return nil, fmt.Errorf("%w: invalid post id %q", ErrValidation, cid)
	}

	var doc models.PostDocument
	if err := ls.storage.FetchJSON(ctx, cid, &doc); err != nil {
		ls.logger.Warnf(providers.TypeGet, "Failed to fetch post %s: %s", cid, err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return &doc, nil
}

// Previews loads every indexed document. Documents that fail to load are
// skipped.
func (ls *LegacyService) Previews(ctx context.Context) []models.PostPreview {
	cids, err := ls.registry.GetPostCids(ctx)
	if err != nil {
		ls.logger.Errorf(providers.TypeGet, "Failed to fetch posts: %s", err)
		return []models.PostPreview{}
	}

	previews := make([]*models.PostPreview, len(cids))
	group := ls.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for i, cid := range cids {
		group.Submit(func() {
			var doc models.PostDocument
			if err := ls.storage.FetchJSON(groupCtx, cid, &doc); err != nil {
				ls.logger.Warnf(providers.TypeGet, "Failed to fetch post with CID %s: %s", cid, err)
				return
			}
			previews[i] = &models.PostPreview{Cid: cid, Title: doc.Title, Excerpt: Excerpt(doc.Content)}
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		ls.logger.Warnf(providers.TypeGet, "Preview fetch encountered error: %s", err)
	}

	out := make([]models.PostPreview, 0, len(previews))
	for _, p := range previews {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// PinName replaces every whitespace character of title with '-'.
func PinName(title string) string {
	return whitespace.ReplaceAllString(title, "-") + ".json"
}

// Excerpt is the first 100 characters of content followed by "...".
func Excerpt(content string) string {
	if utf8.RuneCountInString(content) > excerptLength {
		content = string([]rune(content)[:excerptLength])
	}
	return content + "..."
}
