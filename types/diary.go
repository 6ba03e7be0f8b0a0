package types

// DiaryCard is one entry of the diary listing, labelled by its <time datetime> value.
type DiaryCard struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DateTime string `json:"datetime"`
}

type DiarySortRequest struct {
	Cards []DiaryCard `json:"cards"`
}

type DiaryValidateRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type DiaryValidateResponse struct {
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
	Characters string `json:"characters"`
}
