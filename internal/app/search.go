package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sow_rag/internal/compliance"
	"sow_rag/internal/rag"
)

// Result counts used by the research searches.
const (
	historicalResults = 5
	productResults    = 3
)

var ErrProductNotFound = errors.New("no product information found")

// SOWExcerpt is a historical SOW chunk returned by SearchHistoricalSOWs.
type SOWExcerpt struct {
	Content        string  `json:"content"`
	Source         string  `json:"source"`
	Client         string  `json:"client"`
	Product        string  `json:"product"`
	RelevanceScore float32 `json:"relevance_score"`
	Section        string  `json:"section"`
}

// SearchHistoricalSOWs runs a semantic search restricted to historical SOWs,
// optionally narrowed to one client and product.
func (a *App) SearchHistoricalSOWs(ctx context.Context, query, clientID, product string) ([]SOWExcerpt, error) {
	filters := map[string]string{MetaDocType: DocTypeHistoricalSOW}
	if clientID != "" {
		filters[MetaClientID] = clientID
	}
	if product != "" {
		filters[MetaProduct] = product
	}

	results, err := a.retriever.Search(ctx, query, historicalResults, filters)
	if err != nil {
		return nil, fmt.Errorf("historical SOW search failed: %w", err)
	}

	excerpts := make([]SOWExcerpt, 0, len(results))
	for _, r := range results {
		excerpts = append(excerpts, SOWExcerpt{
			Content:        r.Content,
			Source:         metaOrUnknown(r.Metadata, rag.MetaFileName),
			Client:         metaOrUnknown(r.Metadata, MetaClientID),
			Product:        metaOrUnknown(r.Metadata, MetaProduct),
			RelevanceScore: r.Score,
			Section:        r.Section(),
		})
	}
	return excerpts, nil
}

// ProductInfo is the combined product knowledge base text for one product.
// Catalog is set when the product came from the product catalog.
type ProductInfo struct {
	Product string          `json:"product"`
	Content string          `json:"content"`
	Sources []string        `json:"sources"`
	Catalog *CatalogProduct `json:"catalog,omitempty"`
}

// SearchProductKB consults the product catalog first and otherwise returns
// the product knowledge base chunks closest to an overview query for
// product. The product name only steers the query; any product_kb chunk may
// be returned.
func (a *App) SearchProductKB(ctx context.Context, product string) (ProductInfo, error) {
	if strings.TrimSpace(product) != "" {
		p, ok, err := a.lookupCatalog(product)
		switch {
		case err != nil:
			a.log.Warn("ignoring unreadable product catalog", "file", a.cfg.ProductCatalogFile(), "error", err)
		case ok:
			return ProductInfo{
				Product: p.Name,
				Content: p.render(),
				Sources: []string{CatalogSource},
				Catalog: &p,
			}, nil
		}
	}

	query := fmt.Sprintf("Product overview features pricing for %s", product)

	results, err := a.retriever.Search(ctx, query, productResults, map[string]string{MetaDocType: DocTypeProductKB})
	if err != nil {
		return ProductInfo{}, fmt.Errorf("product search failed: %w", err)
	}
	if len(results) == 0 {
		return ProductInfo{}, fmt.Errorf("%w for '%s'", ErrProductNotFound, product)
	}

	info := ProductInfo{Product: product}
	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
		info.Sources = append(info.Sources, metaOrUnknown(r.Metadata, rag.MetaFileName))
	}
	info.Content = strings.Join(contents, "\n\n")
	return info, nil
}

// Search runs a semantic search over the whole corpus, narrowed by any
// metadata filters given.
func (a *App) Search(ctx context.Context, query string, n int, filters map[string]string) ([]rag.SearchResult, error) {
	results, err := a.retriever.Search(ctx, query, n, filters)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return results, nil
}

// Requirements lists the compliance rules that apply to a client tier.
func (a *App) Requirements(tier string) compliance.Requirements {
	return a.reviewer.Checker().Requirements(tier)
}

func metaOrUnknown(meta map[string]string, key string) string {
	if v, ok := meta[key]; ok && v != "" {
		return v
	}
	return unknown
}
