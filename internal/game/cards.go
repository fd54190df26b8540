package game

import (
	"fmt"
	"math/rand/v2"
)

type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

var suitString = map[Suit]string{
	Hearts:   "Hearts",
	Diamonds: "Diamonds",
	Clubs:    "Clubs",
	Spades:   "Spades",
}

func (s Suit) String() string {
	return suitString[s]
}

// Value runs Two..Ten at face value, then Jack=11 through Ace=14.
type Value int

const (
	Two Value = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	QueenCard
	KingCard
	Ace
)

var valueString = map[Value]string{
	Two:       "Two",
	Three:     "Three",
	Four:      "Four",
	Five:      "Five",
	Six:       "Six",
	Seven:     "Seven",
	Eight:     "Eight",
	Nine:      "Nine",
	Ten:       "Ten",
	Jack:      "Jack",
	QueenCard: "Queen",
	KingCard:  "King",
	Ace:       "Ace",
}

func (v Value) String() string {
	return valueString[v]
}

// Card identity is structural (suit+value); Revealed is the only mutable field.
type Card struct {
	Suit     Suit  `json:"suit"`
	Value    Value `json:"value"`
	Revealed bool  `json:"revealed"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Value.String(), c.Suit.String())
}

// Deck holds the remaining cards; the top of the deck is the last element.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck builds all 52 suit/value combinations, exactly one of each.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	suits := []Suit{Hearts, Diamonds, Clubs, Spades}

	for _, suit := range suits {
		for value := Two; value <= Ace; value++ {
			cards = append(cards, Card{Suit: suit, Value: value})
		}
	}

	return &Deck{Cards: cards}
}

func (d *Deck) Count() int {
	return len(d.Cards)
}

// Shuffle applies a Fisher-Yates permutation in place.
func (d *Deck) Shuffle() {
	for i := len(d.Cards) - 1; i >= 1; i-- {
		j := rand.IntN(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Draw removes and returns the top card. The second return is false once the
// deck is exhausted.
func (d *Deck) Draw() (Card, bool) {
	if len(d.Cards) == 0 {
		return Card{}, false
	}
	card := d.Cards[len(d.Cards)-1]
	d.Cards = d.Cards[:len(d.Cards)-1]
	return card, true
}

// Deal removes up to n cards from the top, in draw order. When fewer than n
// remain it returns only what is available.
func (d *Deck) Deal(n int) []Card {
	dealt := make([]Card, 0, n)
	for range n {
		card, ok := d.Draw()
		if !ok {
			break
		}
		dealt = append(dealt, card)
	}
	return dealt
}
