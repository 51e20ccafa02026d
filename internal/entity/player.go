package entity

type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	GameID      string `json:"game_id,omitempty"`
	Plants      int    `json:"plants"`
	Megacredits int    `json:"megacredits"`
	Rating      int    `json:"rating"`
	Score       int    `json:"score,omitempty"`
}
