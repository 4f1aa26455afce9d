package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/lyrx/internal/contact"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/server"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "home", newPage("Home", "/", struct{ Count int }{a.favorites.Len()}))
}

type searchResult struct {
	Song     models.Song
	Favorite bool
}

type searchData struct {
	Query    string
	Fields   services.FieldQuery
	Advanced bool
	Searched bool
	Results  []searchResult
	Back     string
}

// search runs a free-text search when q is present, or a field search when any of
// track_name, artist_name or album_name is. A bare /search only renders the form.
func (a *App) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := searchData{
		Query: q.Get("q"),
		Fields: services.FieldQuery{
			Track:  q.Get("track_name"),
			Artist: q.Get("artist_name"),
			Album:  q.Get("album_name"),
		},
		Back: searchBack(q),
	}
	data.Advanced = q.Has("track_name") || q.Has("artist_name") || q.Has("album_name")
	p := newPage("Search", "/search", &data)

	if !data.Advanced && !q.Has("q") {
		a.render(w, http.StatusOK, "search", p)
		return
	}

	if (data.Advanced && data.Fields.Empty()) || (!data.Advanced && strings.TrimSpace(data.Query) == "") {
		p.Error = MsgEmptyQuery
		a.render(w, http.StatusBadRequest, "search", p)
		return
	}

	var (
		songs []models.Song
		err   error
	)
	if data.Advanced {
		songs, err = a.catalog.SearchFields(r.Context(), data.Fields)
	} else {
		songs, err = a.catalog.Search(r.Context(), data.Query)
	}
	if err != nil {
		a.logger.Error("search failed", "query", data.Query, "fields", data.Fields, "error", err)
		p.Error = MsgSearchFailed
		a.render(w, http.StatusBadGateway, "search", p)
		return
	}

	data.Searched = true
	data.Results = make([]searchResult, len(songs))
	for i, s := range songs {
		data.Results[i] = searchResult{Song: s, Favorite: a.favorites.IsFavorite(s.ID)}
	}
	a.render(w, http.StatusOK, "search", p)
}

// searchBack keeps only the search parameters so the toggle redirect can rebuild the query.
func searchBack(q url.Values) string {
	back := url.Values{}
	for _, key := range []string{"q", "track_name", "artist_name", "album_name"} {
		if q.Has(key) {
			back.Set(key, q.Get(key))
		}
	}
	return back.Encode()
}

func (a *App) toggleSearchFavorite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	id, err := parseID(r.PostForm.Get("id"))
	if err != nil {
		a.render(w, http.StatusBadRequest, "search", errorPage("Search", "/search", MsgInvalidID, &searchData{}))
		return
	}

	back, _ := url.ParseQuery(r.PostForm.Get("back"))
	location := "/search"
	if encoded := searchBack(back); encoded != "" {
		location += "?" + encoded
	}

	if status, msg := a.toggle(r, id, postedSong(r.PostForm.Get("song"), id)); msg != "" {
		a.render(w, status, "search", errorPage("Search", "/search", msg, &searchData{}))
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

type detailsData struct {
	Song     *models.Song
	Favorite bool
}

func (a *App) details(w http.ResponseWriter, r *http.Request) {
	p := newPage("Details", "", &detailsData{})

	id, err := parseID(server.PathParam(r, "id"))
	if err != nil {
		p.Error = MsgInvalidID
		a.render(w, http.StatusBadRequest, "details", p)
		return
	}

	song, err := a.catalog.GetByID(r.Context(), id)
	if err != nil {
		a.logger.Error("could not load song", "id", id, "error", err)
		p.Error = MsgLoadFailed
		status := http.StatusBadGateway
		if errors.Is(err, shared.ErrSongNotFound) {
			status = http.StatusNotFound
		}
		a.render(w, status, "details", p)
		return
	}

	p.Title = song.TrackName
	p.Data = &detailsData{Song: &song, Favorite: a.favorites.IsFavorite(song.ID)}
	a.render(w, http.StatusOK, "details", p)
}

func (a *App) toggleDetailsFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(server.PathParam(r, "id"))
	if err != nil {
		a.render(w, http.StatusBadRequest, "details", errorPage("Details", "", MsgInvalidID, &detailsData{}))
		return
	}

	if status, msg := a.toggle(r, id, nil); msg != "" {
		a.render(w, status, "details", errorPage("Details", "", msg, &detailsData{}))
		return
	}
	http.Redirect(w, r, "/details/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// toggle removes id when it is a favorite and otherwise adds it. The song is taken from
// held when the page posted it, else fetched from the catalog. It returns a status and
// user message on failure, or 0 and "".
func (a *App) toggle(r *http.Request, id int64, held *models.Song) (int, string) {
	ctx := r.Context()

	if a.favorites.IsFavorite(id) {
		if err := a.favorites.Remove(ctx, id); err != nil {
			a.logger.Error("could not remove favorite", "id", id, "error", err)
			return http.StatusInternalServerError, MsgSaveFailed
		}
		return 0, ""
	}

	var song models.Song
	if held != nil {
		song = *held
	} else {
		fetched, err := a.catalog.GetByID(ctx, id)
		if err != nil {
			a.logger.Error("could not load song", "id", id, "error", err)
			return http.StatusBadGateway, MsgLoadFailed
		}
		song = fetched
	}

	if err := a.favorites.Add(ctx, song); err != nil {
		a.logger.Error("could not add favorite", "id", id, "error", err)
		return http.StatusInternalServerError, MsgSaveFailed
	}
	return 0, ""
}

// postedSong decodes the song a search result posts with its toggle. It returns nil when
// the field is missing, malformed or names a different id.
func postedSong(raw string, id int64) *models.Song {
	if raw == "" {
		return nil
	}
	var song models.Song
	if err := json.Unmarshal([]byte(raw), &song); err != nil || song.ID != id {
		return nil
	}
	return &song
}

type contactData struct {
	Form   contact.Form
	Errors contact.FieldErrors
	Sent   string
}

func (a *App) contactForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, http.StatusOK, "contact", newPage("Contact", "/contact", &contactData{}))
}

// contactSubmit shows the confirmation in place of the form, then refreshes back to an
// empty form after [ContactRefreshSeconds].
func (a *App) contactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := contact.Form{
		Name:    r.PostForm.Get(contact.FieldName),
		Email:   r.PostForm.Get(contact.FieldEmail),
		Message: r.PostForm.Get(contact.FieldMessage),
	}
	data := &contactData{Form: form}
	p := newPage("Contact", "/contact", data)

	msg, err := a.contact.Submit(r.Context(), form)
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		data.Errors = verr.Fields
		a.render(w, http.StatusUnprocessableEntity, "contact", p)
		return
	case err != nil:
		p.Error = MsgSendFailed
		a.render(w, http.StatusBadGateway, "contact", p)
		return
	}

	data.Form = contact.Form{}
	data.Sent = msg.Email
	p.Refresh = strconv.Itoa(ContactRefreshSeconds) + "; url=/contact"
	a.render(w, http.StatusOK, "contact", p)
}

type favoritesData struct {
	Songs []models.Song
}

func (a *App) favoritesList(w http.ResponseWriter, r *http.Request) {
	songs := a.favorites.Favorites().Get()
	a.render(w, http.StatusOK, "favorites", newPage("Favorites", "/favorites", &favoritesData{Songs: songs}))
}

func (a *App) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(server.PathParam(r, "id"))
	if err != nil {
		p := errorPage("Favorites", "/favorites", MsgInvalidID, &favoritesData{Songs: a.favorites.Favorites().Get()})
		a.render(w, http.StatusBadRequest, "favorites", p)
		return
	}

	if err := a.favorites.Remove(r.Context(), id); err != nil {
		a.logger.Error("could not remove favorite", "id", id, "error", err)
		p := errorPage("Favorites", "/favorites", MsgSaveFailed, &favoritesData{Songs: a.favorites.Favorites().Get()})
		a.render(w, http.StatusInternalServerError, "favorites", p)
		return
	}
	http.Redirect(w, r, "/favorites", http.StatusSeeOther)
}

func errorPage(title, active, msg string, data any) *page {
	p := newPage(title, active, data)
	p.Error = msg
	return p
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrInvalidArgument
	}
	return id, nil
}
