package game

import "time"

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Players maps color seats to player ids; an empty string is an open seat.
// A seat, once assigned, is never reassigned.
type Players struct {
	White string `json:"white,omitempty"`
	Black string `json:"black,omitempty"`
}

// communityCardCount cards are dealt face-up when the second player joins.
const communityCardCount = 3

// Session is one game's complete authoritative state. It is mutated only
// through its command methods, and callers must serialize those per session.
type Session struct {
	ID             string    `json:"id"`
	Players        Players   `json:"players"`
	Board          *Board    `json:"board"`
	CommunityCards []Card    `json:"communityCards"`
	CurrentTurn    Color     `json:"currentTurn"`
	Deck           *Deck     `json:"-"`
	DeckSize       int       `json:"deckSize"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewSession builds a waiting session with a freshly shuffled deck and the
// standard starting board, white to move.
func NewSession(id string) *Session {
	deck := NewDeck()
	deck.Shuffle()

	now := time.Now()
	return &Session{
		ID:             id,
		Board:          NewBoard(),
		CommunityCards: []Card{},
		CurrentTurn:    White,
		Deck:           deck,
		DeckSize:       deck.Count(),
		Status:         StatusWaiting,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ColorOf resolves which seat a player id holds. At most one seat matches.
func (s *Session) ColorOf(playerID string) (Color, bool) {
	switch playerID {
	case "":
		return "", false
	case s.Players.White:
		return White, true
	case s.Players.Black:
		return Black, true
	}
	return "", false
}

// Join seats playerID on the requested color. Filling the second seat
// activates the session and deals the revealed community cards; that reveal
// is irreversible and the dealt cards never return to the deck.
func (s *Session) Join(playerID string, color Color) (Update, error) {
	var seat *string
	switch color {
	case White:
		seat = &s.Players.White
	case Black:
		seat = &s.Players.Black
	default:
		return Update{}, ErrInvalidColor
	}

	if *seat != "" {
		return Update{}, ErrColorTaken
	}
	*seat = playerID

	if s.Players.White != "" && s.Players.Black != "" {
		s.Status = StatusActive
		dealt := s.Deck.Deal(communityCardCount)
		for i := range dealt {
			dealt[i].Revealed = true
		}
		s.CommunityCards = append(s.CommunityCards, dealt...)
		s.DeckSize = s.Deck.Count()
	}

	s.UpdatedAt = time.Now()
	return Update{
		SessionID: s.ID,
		Type:      UpdatePlayerJoined,
		Data:      PlayerData{PlayerID: playerID},
	}, nil
}

// Move relocates the acting player's piece from one cell to another,
// capturing any occupant and handing the turn to the other color. All checks
// run before any mutation, so a rejected move leaves the session untouched.
// There is no path-legality, check, or checkmate validation.
func (s *Session) Move(playerID string, from, to Pos) (Update, error) {
	color, ok := s.ColorOf(playerID)
	if !ok || color != s.CurrentTurn {
		return Update{}, ErrNotYourTurn
	}

	piece := s.Board.At(from)
	if piece == nil || piece.Color != color {
		return Update{}, ErrInvalidPiece
	}

	if !to.InBounds() {
		return Update{}, ErrInvalidMove
	}

	s.Board.Place(piece, to)
	s.CurrentTurn = s.CurrentTurn.Opponent()
	s.UpdatedAt = time.Now()

	return Update{
		SessionID: s.ID,
		Type:      UpdateMove,
		Data:      MoveData{From: from, To: to, Piece: *piece},
	}, nil
}

// PlayCard draws the top card, reveals it, and attaches it to the piece at
// target. The card is consumed even when the target cell is empty. No turn or
// ownership check applies; any caller holding the session id may trigger a draw.
func (s *Session) PlayCard(target Pos) (Update, error) {
	card, ok := s.Deck.Draw()
	if !ok {
		return Update{}, ErrDeckEmpty
	}
	card.Revealed = true
	s.DeckSize = s.Deck.Count()

	if piece := s.Board.At(target); piece != nil {
		attached := card
		piece.AttachedCard = &attached
	}

	s.UpdatedAt = time.Now()
	return Update{
		SessionID: s.ID,
		Type:      UpdateCardPlay,
		Data:      CardPlayData{PiecePosition: target, Card: card},
	}, nil
}
