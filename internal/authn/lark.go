package authn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/starford/linkhub/internal/apperr"
)

const larkUserInfoURL = "https://open.feishu.cn/open-apis/authen/v1/user_info"

// LarkUser is the subset of the Lark user-info response we keep.
type LarkUser struct {
	OpenID       string `json:"open_id"`
	UnionID      string `json:"union_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	AvatarURL    string `json:"avatar_url"`
	Mobile       string `json:"mobile"`
	EmployeeNo   string `json:"employee_no"`
	DepartmentID string `json:"department_id"`
}

// LarkClient drives the Lark (Feishu) OAuth authorization-code flow.
type LarkClient struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewLarkClient builds a client for the given app credentials.
func NewLarkClient(clientID, clientSecret, redirectURL string) *LarkClient {
	return &LarkClient{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://accounts.feishu.cn/open-apis/authen/v1/authorize",
				TokenURL:  "https://open.feishu.cn/open-apis/authen/v2/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: larkUserInfoURL,
	}
}

// AuthCodeURL returns the authorization URL the browser is redirected to.
func (c *LarkClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a token and fetches the
// user's profile. Invalid or expired codes fail with ErrUnauthorized.
func (c *LarkClient) ExchangeCode(ctx context.Context, code string) (*LarkUser, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("authn: exchange code: %v: %w", err, apperr.ErrUnauthorized)
	}
	return c.fetchUser(ctx, token)
}

func (c *LarkClient) fetchUser(ctx context.Context, token *oauth2.Token) (*LarkUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("authn: build user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("authn: fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("authn: user info status %d: %w", resp.StatusCode, apperr.ErrUnauthorized)
	}

	var body struct {
		Code int      `json:"code"`
		Msg  string   `json:"msg"`
		Data LarkUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("authn: decode user info: %w", err)
	}
	if body.Code != 0 {
		return nil, fmt.Errorf("authn: user info error %d %s: %w", body.Code, body.Msg, apperr.ErrUnauthorized)
	}
	if body.Data.OpenID == "" {
		return nil, fmt.Errorf("authn: user info missing open_id: %w", apperr.ErrUnauthorized)
	}
	return &body.Data, nil
}
