package echoapi

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/dgrijalva/jwt-go"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/cs-students/markis/core"
	"github.com/cs-students/markis/core/identity"
)

var contextUserKey = "user"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

func GetUserClaims(conf *core.Config, usr identity.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.Username,
			Audience:  "Students",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Name:         usr.DisplayName,
		Email:        usr.Email,
		IsAdmin:      usr.Admin,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get("userToken").(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUser resolves the authenticated user, caching it on the
// request context; the identity service stays the source of truth.
func getContextUser(ctx echo.Context, svc identity.Service, clms ...Claims) (identity.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(identity.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return identity.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetUser(claims.Username)
	if err != nil {
		return identity.User{}, errors.Wrap(err, "finding user by username")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

type authApi struct {
	conf       *core.Config
	svc        identity.Service
	mailSvc    core.EmailService
	validate   *validator.Validate
	translator ut.Translator
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := authApi{
		conf:       s.deps.Conf,
		svc:        s.deps.IdentitySvc,
		mailSvc:    s.deps.MailSvc,
		validate:   s.deps.Validate,
		translator: s.deps.Translator,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)

	// authed endpoints
	ag.POST("/token-refresh", api.refreshToken, jwt)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(data.Username, data.Password)
	if err != nil {
		switch errors.Cause(err) {
		case identity.ErrNotFound, identity.ErrAuthFailed:
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	if !usr.Active {
		return errAccountDeactivated
	}

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) register(ctx echo.Context) error {
	var data identity.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	if err := api.svc.Register(data); err != nil {
		return errors.Wrap(err, "registering user")
	}
	api.sendWelcomeEmail(data)

	return ctx.JSON(http.StatusCreated, SuccessResponse{Success: "Account created. You can now log in."})
}

func (api *authApi) sendWelcomeEmail(nu identity.NewUser) {
	api.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: nu.DisplayName(), Address: nu.Email}},
			Subject:      "Welcome",
			TemplateName: "welcome",
			TemplateData: struct {
				Name     string
				Username string
			}{Name: nu.DisplayName(), Username: nu.Username},
		},
	)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	usr, err := getContextUser(ctx, api.svc, claims)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// check if user is still active
	if !usr.Active {
		return errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(api.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return errRefreshExpired
	}

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr, claims.OrigIssuedAt))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
