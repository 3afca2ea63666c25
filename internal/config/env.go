package config

import "time"

type AuthSource string

const (
	AuthCasdoor AuthSource = "casdoor"
	AuthJWT     AuthSource = "jwt"
)

type StoreDriver string

const (
	StorePostgres StoreDriver = "postgres"
	StoreMemory   StoreDriver = "memory"
)

type Auth struct {
	AuthSource AuthSource `mapstructure:"OAUTH_SOURCE" default:"casdoor"`
	// PEM encoded RSA public key used when AuthSource is jwt.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
}

type Database struct {
	Host         string `mapstructure:"DATABASE_HOST" default:"localhost"`
	Port         int    `mapstructure:"DATABASE_PORT" default:"5432"`
	Name         string `mapstructure:"DATABASE_NAME" default:"chemtrack"`
	User         string `mapstructure:"DATABASE_USER" default:"postgres"`
	Password     string `mapstructure:"DATABASE_PASSWORD" default:"chemtrack"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS" default:"50"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS" default:"10"`
}

type Redis struct {
	Host     string `mapstructure:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `mapstructure:"REDIS_PORT" default:"6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
}

type Server struct {
	Platform string `mapstructure:"PLATFORM" default:"chemtrack"`
	Service  string `mapstructure:"SERVICE" default:"api"`
	Port     int    `mapstructure:"WEB_PORT" default:"8080"`
	GrpcPort int    `mapstructure:"GRPC_PORT" default:"9090"`
	Env      string `mapstructure:"ENV" default:"dev"`
}

type OAuth2 struct {
	ClientID     string   `mapstructure:"OAUTH2_CLIENT_ID"`
	ClientSecret string   `mapstructure:"OAUTH2_CLIENT_SECRET"`
	Scopes       []string `mapstructure:"OAUTH2_SCOPES" default:"[\"read\",\"profile\",\"email\"]"`
	Addr         string   `mapstructure:"CASDOOR_ADDR" default:"http://localhost:8000"`
	TokenURL     string   `mapstructure:"OAUTH2_TOKEN_URL" default:"http://localhost:8000/api/login/oauth/access_token"`
	AuthURL      string   `mapstructure:"OAUTH2_AUTH_URL" default:"http://localhost:8000/login/oauth/authorize"`
	UserInfoURL  string   `mapstructure:"OAUTH2_USERINFO_URL" default:"http://localhost:8000/api/get-account"`
	RedirectURL  string   `mapstructure:"OAUTH2_REDIRECT_URL" default:"http://localhost:8080/api/v1/auth/oauth/callback"`
	// FrontendURL receives the browser after the oauth callback.
	FrontendURL string `mapstructure:"FRONTEND_BASE_URL" default:"http://localhost:3000"`
}

type Log struct {
	LogPath  string `mapstructure:"LOG_PATH" default:"./info.log"`
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
}

type Trace struct {
	Version        string `mapstructure:"TRACE_VERSION" default:"0.0.1"`
	TraceEndpoint  string `mapstructure:"TRACE_TRACEENDPOINT" default:""`
	MetricEndpoint string `mapstructure:"TRACE_METRICENDPOINT" default:""`
}

type Metrics struct {
	Prefix string `mapstructure:"METRICS_PREFIX" default:"chemtrack"`
}

type Presence struct {
	OnlineThreshold time.Duration `mapstructure:"ONLINE_THRESHOLD" default:"5m"`
}

type Store struct {
	Driver StoreDriver `mapstructure:"STORE_DRIVER" default:"postgres"`
}
