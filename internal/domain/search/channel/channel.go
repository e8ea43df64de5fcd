package channel

// Channel identifies a retrieval channel of the hybrid search.
type Channel string

// Retrieval channels.
const (
	// Vector ranks by cosine similarity between query and product embeddings.
	Vector Channel = "vector"
	// Keyword matches query terms against product titles.
	Keyword Channel = "keyword"
)

// All lists channels in merge order.
var All = []Channel{Vector, Keyword}

// IsValid checks if the channel is one of the supported values.
func (c Channel) IsValid() bool {
	return c == Vector || c == Keyword
}

// String returns the channel name.
func (c Channel) String() string { return string(c) }
