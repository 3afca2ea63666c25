package casdoor

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/common/code"
	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo"
	"golang.org/x/oauth2"
)

var (
	oauthConfig *oauth2.Config
	oauthOnce   sync.Once
)

func OAuthConfig() *oauth2.Config {
	oauthOnce.Do(func() {
		conf := config.Global().OAuth2
		oauthConfig = &oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,
			Scopes:       conf.Scopes,
			RedirectURL:  conf.RedirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL: conf.TokenURL,
				AuthURL:  conf.AuthURL,
			},
		}
	})
	return oauthConfig
}

type account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type userInfo struct {
	Status string   `json:"status"`
	Msg    string   `json:"msg"`
	Data   *account `json:"data"`
}

type casClient struct {
	conf        *oauth2.Config
	userInfoURL string
}

func New() repo.IdentityProvider {
	return &casClient{
		conf:        OAuthConfig(),
		userInfoURL: config.Global().OAuth2.UserInfoURL,
	}
}

// Verify resolves an access token through the casdoor userinfo endpoint.
func (c *casClient) Verify(ctx context.Context, token string) (*repo.Identity, error) {
	httpClient := c.conf.Client(ctx, &oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	result := &userInfo{}
	resp, err := resty.NewWithClient(httpClient).R().
		SetContext(ctx).
		SetResult(result).
		Get(c.userInfoURL)
	if err != nil {
		logger.Errorf(ctx, "casdoor userinfo http err: %+v", err)
		return nil, code.IdentityProviderErr.WithErr(err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, code.InvalidToken
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, code.IdentityProviderErr.WithMsgf("http code: %d", resp.StatusCode())
	}
	if result.Status != "ok" || result.Data == nil {
		return nil, code.InvalidToken
	}
	return result.Data.identity(), nil
}

func (a *account) identity() *repo.Identity {
	first, last := a.FirstName, a.LastName
	if first == "" && last == "" {
		first, last, _ = strings.Cut(a.DisplayName, " ")
	}
	uid := a.ID
	if uid == "" {
		uid = a.Name
	}
	return &repo.Identity{
		UID:       uid,
		Email:     a.Email,
		FirstName: first,
		LastName:  last,
		Phone:     a.Phone,
	}
}
