package filetype

// Profile is the approximate token budget for one category, measured in
// whitespace-separated words.
type Profile struct {
	MaxTokens     int `yaml:"max_tokens"`
	OverlapTokens int `yaml:"overlap_tokens"`
}

// DefaultProfile applies to categories without an explicit entry.
var DefaultProfile = Profile{MaxTokens: 1000, OverlapTokens: 100}

// DefaultProfiles returns the built-in budgets per category.
func DefaultProfiles() map[Category]Profile {
	return map[Category]Profile{
		CategoryCode:   {MaxTokens: 1000, OverlapTokens: 100},
		CategoryDocs:   {MaxTokens: 500, OverlapTokens: 50},
		CategoryConfig: {MaxTokens: 800, OverlapTokens: 0},
		CategoryData:   {MaxTokens: 300, OverlapTokens: 0},
	}
}
