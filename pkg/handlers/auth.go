package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"cms-site/pkg/config"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// GitHubUserURL is the endpoint used to learn who logged in.
var GitHubUserURL = "https://api.github.com/user"

func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	token := session.Get("access_token")
	if token == nil {
		if strings.Contains(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		} else {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		}
		return
	}
	c.Next()
}

func LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Error": c.Query("error")})
}

func GithubLogin(c *gin.Context) {
	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set("oauth_state", state)
	session.Save()

	url := config.OauthConf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func AuthCallback(c *gin.Context) {
	session := sessions.Default(c)
	if want, _ := session.Get("oauth_state").(string); want == "" || want != c.Query("state") {
		c.String(http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	session.Delete("oauth_state")

	code := c.Query("code")
	token, err := config.OauthConf.Exchange(context.Background(), code)
	if err != nil {
		c.String(http.StatusInternalServerError, "OAuth Exchange Failed")
		return
	}

	login, err := githubLogin(c.Request.Context(), token)
	if err != nil {
		c.String(http.StatusBadGateway, "Failed to read GitHub user")
		return
	}
	if len(config.AdminUsers) > 0 && !slices.Contains(config.AdminUsers, login) {
		session.Clear()
		session.Save()
		c.Redirect(http.StatusFound, "/login?error=not+an+admin")
		return
	}

	session.Set("access_token", token.AccessToken)
	session.Set("user", login)
	session.Save()

	c.Redirect(http.StatusFound, "/admin/api/cache")
}

func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}

func githubLogin(ctx context.Context, token *oauth2.Token) (string, error) {
	client := config.OauthConf.Client(ctx, token)
	resp, err := client.Get(GitHubUserURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github user: status %d", resp.StatusCode)
	}
	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", err
	}
	return user.Login, nil
}
