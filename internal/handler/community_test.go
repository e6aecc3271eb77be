package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunity_PostIsScopedToGame(t *testing.T) {
	app := newTestApp(t)
	halo := app.addGame(t, "Halo", 60)
	doom := app.addGame(t, "Doom", 20)

	res := app.postJSON(t, fmt.Sprintf("/add_message/%d", halo.ID), `{"text":"Finish the fight"}`)
	require.Equal(t, http.StatusOK, res.status)

	var msg struct {
		ID   int64  `json:"id"`
		Name int    `json:"name"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.body), &msg), "name is a number")
	assert.NotZero(t, msg.ID)
	assert.GreaterOrEqual(t, msg.Name, 0)
	assert.LessOrEqual(t, msg.Name, 65528)
	assert.Equal(t, "Finish the fight", msg.Text)

	thread := app.get(t, fmt.Sprintf("/community/%d", halo.ID))
	assert.Equal(t, http.StatusOK, thread.status)
	assert.Contains(t, thread.body, "Finish the fight")
	assert.Contains(t, thread.body, fmt.Sprintf("<strong>%d</strong>: Finish the fight", msg.Name))
	assert.Contains(t, thread.body, fmt.Sprintf("posting as <strong>%d</strong>", msg.Name), "same visitor identity")

	other := app.get(t, fmt.Sprintf("/community/%d", doom.ID))
	assert.Equal(t, http.StatusOK, other.status)
	assert.NotContains(t, other.body, "Finish the fight")
}

func TestCommunity_TextIsEscaped(t *testing.T) {
	app := newTestApp(t)
	halo := app.addGame(t, "Halo", 60)

	app.postJSON(t, fmt.Sprintf("/add_message/%d", halo.ID), `{"text":"<script>alert(1)</script>"}`)

	thread := app.get(t, fmt.Sprintf("/community/%d", halo.ID))
	assert.NotContains(t, thread.body, "<script>alert(1)</script>")
	assert.Contains(t, thread.body, "&lt;script&gt;")
}

func TestCommunity_Errors(t *testing.T) {
	app := newTestApp(t)
	halo := app.addGame(t, "Halo", 60)

	assert.Equal(t, http.StatusNotFound, app.get(t, "/community/999").status)

	res := app.postJSON(t, "/add_message/999", `{"text":"hi"}`)
	assert.Equal(t, http.StatusNotFound, res.status)

	res = app.postJSON(t, fmt.Sprintf("/add_message/%d", halo.ID), `{}`)
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = app.postJSON(t, fmt.Sprintf("/add_message/%d", halo.ID), `not json`)
	assert.Equal(t, http.StatusBadRequest, res.status)
}
