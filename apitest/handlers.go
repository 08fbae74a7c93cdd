package apitest

import (
	"io"
	"net/http"
	"strings"

	"github.com/as283-ua/go-social-feed/util"
	"github.com/as283-ua/go-social-feed/util/model"
)

func LoginHandler(w http.ResponseWriter, req *http.Request) {
	var login model.LoginRequest
	if err := util.DecodeJSON(req.Body, &login); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	db := GetDb(req)
	u, err := db.checkCredentials(login.Email, login.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if err.Error() == "USER_NOT_FOUND" {
			status = http.StatusNotFound
		}
		respondError(w, status, err.Error())
		return
	}

	token, err := generateToken(db.secret, u.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}

	util.WriteJSON(w, http.StatusCreated, model.LoginResponse{ID: u.ID, AccessToken: token})
}

func RegisterHandler(w http.ResponseWriter, req *http.Request) {
	var in model.RegisterRequest
	if err := util.DecodeJSON(req.Body, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	var problems []string
	if !strings.Contains(in.Email, "@") {
		problems = append(problems, "email must be an email")
	}
	if len(in.Password) < 6 {
		problems = append(problems, "password must be longer than or equal to 6 characters")
	}
	if len(problems) > 0 {
		util.WriteJSON(w, http.StatusBadRequest, map[string]any{"statusCode": 400, "message": problems})
		return
	}

	db := GetDb(req)

	db.mu.Lock()
	u, err := db.addUserLocked(in.Email, in.Password, model.User{
		Alias:     in.Alias,
		Name:      in.Name,
		Lastname:  in.Lastname,
		Birthdate: in.Birthdate,
		Role:      &model.Role{ID: int64(in.RoleID), Name: "user"},
	})
	issue := db.IssueTokenOnRegister
	db.mu.Unlock()

	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	out := model.RegisterResponse{User: u}
	if issue {
		out.AccessToken, _ = generateToken(db.secret, u.ID)
	}
	util.WriteJSON(w, http.StatusCreated, out)
}

func GetUserHandler(w http.ResponseWriter, req *http.Request) {
	id, err := model.ParseID(req.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	u, ok := GetDb(req).User(id)
	if !ok {
		respondError(w, http.StatusNotFound, "USER_NOT_FOUND")
		return
	}
	util.WriteJSON(w, http.StatusOK, u)
}

func GetPostsHandler(w http.ResponseWriter, req *http.Request) {
	util.WriteJSON(w, http.StatusOK, GetDb(req).Posts(currentUserID(req)))
}

func CreatePostHandler(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "expected multipart form")
		return
	}

	authorID, err := model.ParseID(req.FormValue("authorId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "authorId must be a number")
		return
	}

	post := model.Post{
		AuthorID:    authorID,
		Type:        model.PostType(req.FormValue("type")),
		Caption:     req.FormValue("caption"),
		TextContent: req.FormValue("textContent"),
	}

	switch post.Type {
	case model.PostText:
		if strings.TrimSpace(post.TextContent) == "" {
			respondError(w, http.StatusBadRequest, "textContent should not be empty")
			return
		}
	case model.PostImage:
		file, header, err := req.FormFile("source")
		if err != nil {
			respondError(w, http.StatusBadRequest, "source file is required")
			return
		}
		io.Copy(io.Discard, file)
		file.Close()
		post.Source = "/uploads/" + header.Filename
	default:
		respondError(w, http.StatusBadRequest, "type must be text or image")
		return
	}

	util.WriteJSON(w, http.StatusCreated, GetDb(req).AddPost(post))
}

func UpdatePostHandler(w http.ResponseWriter, req *http.Request) {
	var in model.UpdatePostPayload
	if err := util.DecodeJSON(req.Body, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	post, err := GetDb(req).updatePost(in, currentUserID(req))
	if err != nil {
		status := http.StatusNotFound
		if err.Error() == "FORBIDDEN" {
			status = http.StatusForbidden
		}
		respondError(w, status, err.Error())
		return
	}
	util.WriteJSON(w, http.StatusOK, post)
}

func ToggleLikeHandler(w http.ResponseWriter, req *http.Request) {
	var in model.LikePayload
	if err := util.DecodeJSON(req.Body, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	liked, err := GetDb(req).ToggleLike(in.PostID, in.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	util.WriteJSON(w, http.StatusCreated, model.LikeResult{Liked: liked})
}

func CountLikesHandler(w http.ResponseWriter, req *http.Request) {
	id, err := model.ParseID(req.PathValue("postId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	util.WriteJSON(w, http.StatusOK, GetDb(req).LikeCount(id))
}
