package dto

// ListParams carries cursor pagination inputs shared by list endpoints.
type ListParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}
