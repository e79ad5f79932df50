package dto

import "yamdb/internal/api/models"

// TaxonRequest creates a category or a genre
type TaxonRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

func (r TaxonRequest) ToTaxon() models.Taxon {
	return models.Taxon{Name: r.Name, Slug: r.Slug}
}

type TaxonResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromTaxon(t models.Taxon) TaxonResponse {
	return TaxonResponse{Name: t.Name, Slug: t.Slug}
}

func FromCategories(list []models.Category) []TaxonResponse {
	out := make([]TaxonResponse, 0, len(list))
	for _, c := range list {
		out = append(out, FromTaxon(c.Taxon))
	}
	return out
}

func FromGenres(list []models.Genre) []TaxonResponse {
	out := make([]TaxonResponse, 0, len(list))
	for _, g := range list {
		out = append(out, FromTaxon(g.Taxon))
	}
	return out
}
