package dto

import "yamdb/internal/api/models"

// TitleCreateRequest references category and genres by slug
type TitleCreateRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        *int     `json:"year" binding:"required,pastyear"`
	Description string   `json:"description"`
	Category    string   `json:"category" binding:"required"`
	Genre       []string `json:"genre" binding:"required"`
}

// TitleUpdateRequest: partial update, nil fields are left unchanged
type TitleUpdateRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=256"`
	Year        *int      `json:"year" binding:"omitempty,pastyear"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" binding:"omitempty,min=1"`
	Genre       *[]string `json:"genre"`
}

// TitleFilter holds the list query parameters
type TitleFilter struct {
	Name     string `form:"name"`
	Year     *int   `form:"year"`
	Category string `form:"category"`
	Genre    string `form:"genre"`
}

type TitleResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Year        int             `json:"year"`
	Rating      *float64        `json:"rating"`
	Description string          `json:"description"`
	Genre       []TaxonResponse `json:"genre"`
	Category    *TaxonResponse  `json:"category"`
}

// TitleWithRating pairs a title with its computed rating
type TitleWithRating struct {
	Title  models.Title
	Rating *float64
}

func FromModelToTitleResponse(t *models.Title, rating *float64) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genre:       FromGenres(t.Genres),
	}
	if t.Category != nil {
		c := FromTaxon(t.Category.Taxon)
		resp.Category = &c
	}
	return resp
}

func FromTitlesWithRating(list []TitleWithRating) []TitleResponse {
	out := make([]TitleResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModelToTitleResponse(&list[i].Title, list[i].Rating))
	}
	return out
}
