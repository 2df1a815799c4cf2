package model

// SiteData is the site-wide data handed to every template.
type SiteData struct {
	Title   string
	BaseURL string
	Params  map[string]interface{}
}

// PageData is what a layout receives. Only the fields relevant to the page are set.
type PageData struct {
	Site      SiteData
	PageTitle string
	Layout    string

	Posts    []Post
	Featured []Post

	Post    *Post
	Related []RelatedPost

	Query string

	Tag      string
	Category string
	Index    *Index
}
