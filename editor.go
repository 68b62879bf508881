package eventsite

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/eventsite/content"
)

// errBadEditorRequest marks requests the editor cannot interpret.
var errBadEditorRequest = errors.New("bad editor request")

// editorRequest is one editor operation as submitted by the admin page.
// The whole document travels in Blocks; the server keeps no editor state.
type editorRequest struct {
	Op        string
	Blocks    string
	Kind      string
	ID        string
	Index     string
	Direction string
	Content   *string
	Caption   *string
	Level     *int
	Upload    *content.Upload
}

// EditorField names the input holding field of block id. Every block card
// lives in the same form, so plain names would collide.
func EditorField(field, id string) string {
	return field + "-" + id
}

func optionalField(c echo.Context, name string) *string {
	form, err := c.FormParams()
	if err != nil {
		return nil
	}
	if _, ok := form[name]; !ok {
		return nil
	}
	v := form.Get(name)
	return &v
}

// blockField prefers the id-scoped input and falls back to the plain name
// used by scripted clients.
func blockField(c echo.Context, field, id string) *string {
	if id != "" {
		if v := optionalField(c, EditorField(field, id)); v != nil {
			return v
		}
	}
	return optionalField(c, field)
}

func readEditorRequest(c echo.Context) editorRequest {
	id := c.FormValue("id")
	req := editorRequest{
		Op:        c.Param("op"),
		Blocks:    c.FormValue("blocks"),
		Kind:      c.FormValue("kind"),
		ID:        id,
		Index:     c.FormValue("index"),
		Direction: c.FormValue("direction"),
		Content:   blockField(c, "content", id),
		Caption:   blockField(c, "caption", id),
	}
	if lv := blockField(c, "level", id); lv != nil && *lv != "" {
		if n, err := strconv.Atoi(*lv); err == nil {
			req.Level = &n
		}
	}
	return req
}

// uploadFile returns the file picked in block id's upload input.
func uploadFile(c echo.Context, id string) (*multipart.FileHeader, error) {
	if id != "" {
		if fh, err := c.FormFile(EditorField("file", id)); err == nil {
			return fh, nil
		}
	}
	return c.FormFile("file")
}

// applyEditorOp runs req against a fresh editor over the submitted document
// and returns the resulting state. Upload failures become a notice; the
// document is otherwise unchanged.
func applyEditorOp(ctx context.Context, uploader content.Uploader, req editorRequest) (EditorState, error) {
	blocks, err := content.Parse(req.Blocks)
	if err != nil {
		return EditorState{}, fmt.Errorf("%w: %v", errBadEditorRequest, err)
	}
	ed := content.NewEditor(blocks, uploader)
	var notice string

	switch req.Op {
	case "insert":
		kind := content.Kind(req.Kind)
		if !kind.Valid() {
			return EditorState{}, fmt.Errorf("%w: kind %q", errBadEditorRequest, req.Kind)
		}
		if req.Index == "" {
			_, err = ed.Insert(kind)
		} else {
			idx, convErr := strconv.Atoi(req.Index)
			if convErr != nil {
				return EditorState{}, fmt.Errorf("%w: index %q", errBadEditorRequest, req.Index)
			}
			_, err = ed.InsertAfter(kind, idx)
		}
		if err != nil {
			return EditorState{}, err
		}
	case "update":
		ed.Update(req.ID, content.Patch{Content: req.Content, Caption: req.Caption, Level: req.Level})
	case "remove":
		ed.Remove(req.ID)
	case "move":
		idx, convErr := strconv.Atoi(req.Index)
		dir, ok := content.ParseDirection(req.Direction)
		if convErr != nil || !ok {
			return EditorState{}, fmt.Errorf("%w: move %q %q", errBadEditorRequest, req.Index, req.Direction)
		}
		ed.Move(idx, dir)
	case "upload":
		if req.Upload == nil {
			notice = "Keine Datei ausgewählt. / No file selected."
			break
		}
		if _, err := ed.PopulateFromUpload(ctx, req.ID, *req.Upload); err != nil {
			if errors.Is(err, content.ErrUnknownBlock) {
				return EditorState{}, fmt.Errorf("%w: %v", errBadEditorRequest, err)
			}
			notice = "Upload fehlgeschlagen. / Upload failed: " + uploadReason(err)
		}
	default:
		return EditorState{}, fmt.Errorf("%w: unknown operation %q", errBadEditorRequest, req.Op)
	}
	return EditorState{Blocks: ed.Blocks(), Notice: notice}, nil
}

// uploadReason strips the sentinel prefix so the admin sees the cause.
func uploadReason(err error) string {
	return strings.TrimPrefix(err.Error(), content.ErrUpload.Error()+": ")
}

func (a *App) handleEditorOp(c echo.Context) error {
	req := readEditorRequest(c)
	if req.Op == "upload" {
		if fh, err := uploadFile(c, req.ID); err == nil && fh.Filename != "" {
			if fh.Size > a.Config.MaxUploadSize {
				blocks, err := content.Parse(req.Blocks)
				if err != nil {
					return echo.NewHTTPError(http.StatusBadRequest, fmt.Errorf("%w: %v", errBadEditorRequest, err).Error())
				}
				return Render(c, a.Views.AdminEditor(EditorState{
					Blocks: blocks,
					Notice: fmt.Sprintf("Datei zu groß. / File too large (max %d MB).", a.Config.MaxUploadSize>>20),
				}, CsrfToken(c)))
			}
			src, err := fh.Open()
			if err != nil {
				return err
			}
			defer src.Close()
			req.Upload = &content.Upload{
				Name:        fh.Filename,
				ContentType: fh.Header.Get(echo.HeaderContentType),
				Size:        fh.Size,
				Body:        src,
			}
		}
	}

	state, err := applyEditorOp(c.Request().Context(), a.Media, req)
	if err != nil {
		if errors.Is(err, errBadEditorRequest) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	if state.Notice != "" {
		a.log.Warn("editor notice", zap.String("op", req.Op), zap.String("notice", state.Notice))
	}
	return Render(c, a.Views.AdminEditor(state, CsrfToken(c)))
}
