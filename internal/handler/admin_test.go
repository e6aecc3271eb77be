package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_GameCRUD(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	res := app.postForm(t, "/admin/games/new", url.Values{
		"name": {"Halo"}, "price": {"60"}, "author": {"Bungie"}, "dir_photo": {"halo"},
	})
	require.Equal(t, http.StatusSeeOther, res.status)
	assert.Equal(t, "/admin/games/", res.location)

	games, err := app.db.ListGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	id := games[0].ID

	list := app.get(t, "/admin/games/")
	assert.Contains(t, list.body, "Halo")
	assert.Contains(t, list.body, "Games record saved")

	edit := app.get(t, fmt.Sprintf("/admin/games/%d/edit", id))
	assert.Equal(t, http.StatusOK, edit.status)
	assert.Contains(t, edit.body, `value="Bungie"`)

	res = app.postForm(t, fmt.Sprintf("/admin/games/%d/edit", id), url.Values{
		"name": {"Halo CE"}, "price": {"40"}, "author": {"Bungie"}, "dir_photo": {"halo"},
	})
	require.Equal(t, http.StatusSeeOther, res.status)
	game, err := app.db.GetGame(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Halo CE", game.Name)
	assert.Equal(t, 40, game.Price)

	res = app.postForm(t, fmt.Sprintf("/admin/games/%d/delete", id), nil)
	require.Equal(t, http.StatusSeeOther, res.status)
	games, _ = app.db.ListGames(context.Background())
	assert.Empty(t, games)
}

func TestAdmin_InvalidFormRerenders(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	res := app.postForm(t, "/admin/games/new", url.Values{"name": {"Halo"}, "price": {"sixty"}, "author": {"Bungie"}})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, res.body, "Price must be a whole number")
	assert.Contains(t, res.body, `value="Halo"`, "submitted values are kept")

	res = app.postForm(t, "/admin/news/new", url.Values{"title": {"Hi"}})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, res.body, "Content is required")
}

func TestAdmin_MessageFormListsGames(t *testing.T) {
	app := newTestApp(t)
	app.login(t)
	halo := app.addGame(t, "Halo", 60)

	form := app.get(t, "/admin/messages/new")
	assert.Equal(t, http.StatusOK, form.status)
	assert.Contains(t, form.body, fmt.Sprintf(`<option value="%d">Halo</option>`, halo.ID))

	res := app.postForm(t, "/admin/messages/new", url.Values{
		"name": {"7"}, "text": {"hello"}, "game_id": {strconv.FormatInt(halo.ID, 10)},
	})
	assert.Equal(t, http.StatusSeeOther, res.status)

	res = app.postForm(t, "/admin/messages/new", url.Values{"name": {"7"}, "text": {"hello"}, "game_id": {"999"}})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, res.body, "no game with id 999")
}

func TestAdmin_UserPasswordNotShown(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	res := app.postForm(t, "/admin/users/new", url.Values{"username": {"bob"}, "password": {"hunter2"}})
	require.Equal(t, http.StatusSeeOther, res.status)

	user, err := app.db.GetUserByUsername(context.Background(), "bob")
	require.NoError(t, err)

	edit := app.get(t, fmt.Sprintf("/admin/users/%d/edit", user.ID))
	assert.Equal(t, http.StatusOK, edit.status)
	assert.NotContains(t, edit.body, user.PasswordHash)
	assert.NotContains(t, edit.body, "hunter2")

	res = app.postForm(t, "/admin/users/new", url.Values{"username": {"bob"}, "password": {"x"}})
	assert.Equal(t, http.StatusConflict, res.status)
}

func TestAdmin_NotFound(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	assert.Equal(t, http.StatusNotFound, app.get(t, "/admin/orders/").status)
	assert.Equal(t, http.StatusNotFound, app.get(t, "/admin/games/999/edit").status)
	assert.Equal(t, http.StatusNotFound, app.postForm(t, "/admin/news/999/delete", nil).status)
}
