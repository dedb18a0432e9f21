package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSay(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	a := joinTestPlayer(t, g, "Ada", "town_square")
	b := joinTestPlayer(t, g, "Bob", "town_square")
	c := joinTestPlayer(t, g, "Cem", "forest")
	takeEvents(g)

	ok, msg := g.Say(a, "hello there")
	require.True(t, ok)
	assert.Equal(t, `You say, "hello there"`, msg)

	evs := takeEvents(g)
	bMsgs := messagesFor(evs, b.ID)
	require.Len(t, bMsgs, 1)
	assert.Equal(t, `Ada says, "hello there"`, bMsgs[0])
	assert.Empty(t, messagesFor(evs, c.ID), "say does not carry between rooms")

	ok, msg = g.Say(a, "   ")
	assert.False(t, ok)
	assert.Equal(t, "Say what?", msg)
}

func TestYell_ReachesAdjacentRooms(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	a := joinTestPlayer(t, g, "Ada", "town_square")
	b := joinTestPlayer(t, g, "Bob", "town_square")
	c := joinTestPlayer(t, g, "Cem", "forest")
	takeEvents(g)

	ok, msg := g.Yell(a, "look out")
	require.True(t, ok)
	assert.Equal(t, `You yell, "look out"`, msg)

	evs := takeEvents(g)
	for _, id := range []string{b.ID, c.ID} {
		msgs := messagesFor(evs, id)
		require.Len(t, msgs, 1)
		assert.Equal(t, `Ada yells, "look out"`, msgs[0])
	}
	assert.Empty(t, messagesFor(evs, a.ID), "the yeller only gets the echo line")
}

func TestWhisper(t *testing.T) {
	g := newTestGame(t, &seqRoller{})
	a := joinTestPlayer(t, g, "Ada", "town_square")
	b := joinTestPlayer(t, g, "Bob", "forest")
	takeEvents(g)

	ok, msg := g.Whisper(a, "bob meet me at the square")
	require.True(t, ok)
	assert.Equal(t, `You whisper to Bob, "meet me at the square"`, msg)

	evs := takeEvents(g)
	bMsgs := messagesFor(evs, b.ID)
	require.Len(t, bMsgs, 1)
	assert.Equal(t, `Ada whispers, "meet me at the square"`, bMsgs[0])

	ok, msg = g.Whisper(a, "zed hello")
	assert.False(t, ok)
	assert.Equal(t, "zed is not here.", msg)

	ok, msg = g.Whisper(a, "ada hello")
	assert.False(t, ok)
	assert.Equal(t, "You mutter to yourself.", msg)

	ok, msg = g.Whisper(a, "bob")
	assert.False(t, ok)
	assert.Equal(t, "Whisper to whom, and what?", msg)
}
