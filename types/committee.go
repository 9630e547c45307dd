package types

// Committee is one entry of the master committee list.
type Committee struct {
	Type             string `yaml:"type" json:"type"`
	Name             string `yaml:"name" json:"name"`
	ThomasID         string `yaml:"thomas_id" json:"thomas_id"`
	HouseCommitteeID string `yaml:"house_committee_id" json:"house_committee_id,omitempty"`
	YoutubeID        string `yaml:"youtube_id" json:"youtube_id,omitempty"`
	URL              string `yaml:"url" json:"url,omitempty"`
}

// Video is the summary of one uploaded video used for matching.
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
