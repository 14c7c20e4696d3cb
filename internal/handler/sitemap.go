package handler

import (
	"context"
	"encoding/xml"
	"log"
	"time"

	"reviewflow/internal/config"
	"reviewflow/internal/repository"
	"reviewflow/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const sitemapCacheKey = "sitemap:xml"

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

// SitemapBuilder renders the configured static paths plus the approved
// product links as sitemap XML, cached in Redis.
type SitemapBuilder struct {
	requestRepo *repository.ReviewRequestRepository
	redisClient *redis.Client
	cfg         *config.Config
}

func NewSitemapBuilder(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *SitemapBuilder {
	return &SitemapBuilder{
		requestRepo: repository.NewReviewRequestRepository(db),
		redisClient: rdb,
		cfg:         cfg,
	}
}

func (b *SitemapBuilder) build(ctx context.Context) ([]byte, error) {
	now := time.Now().Format("2006-01-02")

	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, path := range b.cfg.Sitemap.StaticPaths {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        b.cfg.Sitemap.BaseURL + path,
			LastMod:    now,
			ChangeFreq: "weekly",
		})
	}

	links, err := b.requestRepo.ListApprovedProductLinks(ctx, 500)
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		set.URLs = append(set.URLs, urlEntry{Loc: link, ChangeFreq: "daily"})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Sitemap serves /sitemap.xml.
func (h *Handler) Sitemap(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := h.sitemap.redisClient.Get(ctx, sitemapCacheKey).Bytes(); err == nil {
		c.Data(200, "application/xml", cached)
		return
	}

	body, err := h.sitemap.build(ctx)
	if err != nil {
		log.Printf("[Sitemap] build failed: %v", err)
		response.ServerError(c, "failed to build sitemap")
		return
	}

	ttl := time.Duration(h.cfg.Sitemap.CacheTTLMin) * time.Minute
	if err := h.sitemap.redisClient.Set(ctx, sitemapCacheKey, body, ttl).Err(); err != nil {
		log.Printf("[Sitemap] cache write failed: %v", err)
	}

	c.Data(200, "application/xml", body)
}
