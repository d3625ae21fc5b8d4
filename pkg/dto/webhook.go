package dto

type CreateWebhookRequest struct {
	Name          string   `json:"name"`
	URL           string   `json:"url"`
	Secret        string   `json:"secret"`
	Events        []string `json:"events"`
	Sources       []string `json:"sources"`
	CollectionIDs []string `json:"collection_ids"`
}
