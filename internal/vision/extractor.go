package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"rankpipe/internal/cache"
	"rankpipe/internal/model"
	"rankpipe/internal/retry"
	"rankpipe/internal/util"
)

// Extractor is the extraction client: one atomic model call per board,
// bounded retry on transient failure, then degrade to an empty batch.
// A board's failure never reaches the caller as an error.
type Extractor struct {
	provider Provider
	policy   retry.Policy
	log      *util.Logger

	prompt   string
	model    string
	limiter  *rate.Limiter
	cache    cache.Cache
	cacheTTL time.Duration
}

// ExtractorOptions carries the optional collaborators.
type ExtractorOptions struct {
	Model    string
	Limiter  *rate.Limiter // rate limit on model calls; nil = unlimited
	Cache    cache.Cache   // reply cache; nil = disabled
	CacheTTL time.Duration
	Prompt   string // override for tests; empty = BuildPrompt()
}

// NewExtractor creates an extraction client around a provider.
func NewExtractor(provider Provider, policy retry.Policy, log *util.Logger, opts ExtractorOptions) *Extractor {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = BuildPrompt()
	}
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Extractor{
		provider: provider,
		policy:   policy,
		log:      log,
		prompt:   prompt,
		model:    opts.Model,
		limiter:  opts.Limiter,
		cache:    opts.Cache,
		cacheTTL: ttl,
	}
}

// Extract sends every screenshot of one board to the model and returns
// the parsed raw records. All failure modes degrade to an empty slice:
// exhausted retries, empty replies, and undecodable output are logged
// against the board label and the run moves on.
func (e *Extractor) Extract(ctx context.Context, label string, images []Image) []model.RawRecord {
	if len(images) == 0 {
		e.log.Warn("[%s] no images to extract", label)
		return nil
	}

	req := ExtractRequest{
		Prompt: e.prompt,
		Images: images,
		Model:  e.model,
	}

	key := e.cacheKey(req)
	if e.cache != nil {
		if cached, found := e.cache.Get(key); found {
			e.log.Debug("[%s] using cached model reply", label)
			return e.parse(label, string(cached))
		}
	}

	policy := e.policy
	policy.OnRetry = func(attempt int, err error) {
		e.log.Warn("[%s] extraction attempt %d/%d failed: %v - retrying",
			label, attempt, policy.MaxAttempts, err)
	}

	var reply string
	err := policy.Do(ctx, func() error {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		text, err := e.provider.Extract(ctx, req)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return retry.ErrEmptyReply
		}
		reply = text
		return nil
	})
	if err != nil {
		e.log.Error("[%s] extraction failed after %d attempts: %v - skipping board",
			label, policy.MaxAttempts, err)
		return nil
	}

	if e.cache != nil {
		if err := e.cache.Set(key, []byte(reply), e.cacheTTL); err != nil {
			e.log.Debug("[%s] cache write failed: %v", label, err)
		}
	}

	return e.parse(label, reply)
}

func (e *Extractor) parse(label, reply string) []model.RawRecord {
	records, err := ParseRecords(reply)
	if err != nil {
		e.log.Error("[%s] unparsable model reply: %v\nreply was: %s", label, err, reply)
		return nil
	}
	return records
}

// cacheKey digests the full request so a changed prompt, model or any
// image byte misses the cache.
func (e *Extractor) cacheKey(req ExtractRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Model))
	h.Write([]byte(req.Prompt))
	for _, img := range req.Images {
		h.Write([]byte(img.MIME))
		h.Write(img.Data)
	}
	return cache.Key(hex.EncodeToString(h.Sum(nil)))
}
