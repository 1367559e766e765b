package envs

import "os"

type Envs struct {
	HTTP_PORT            string
	LOG_LEVEL            string
	FEED_URL             string
	REDIS_ADDRESS        string
	REDIS_PORT           string
	REDIS_PASSWORD       string
	FEED_REFRESH_MINUTES string
}

func ReadEnvs() *Envs {
	envs := Envs{}
	envs.HTTP_PORT = os.Getenv("HTTP_PORT")
	envs.LOG_LEVEL = os.Getenv("LOG_LEVEL")
	envs.FEED_URL = os.Getenv("FEED_URL")
	envs.REDIS_ADDRESS = os.Getenv("REDIS_ADDRESS")
	envs.REDIS_PORT = os.Getenv("REDIS_PORT")
	envs.REDIS_PASSWORD = os.Getenv("REDIS_PASSWORD")
	envs.FEED_REFRESH_MINUTES = os.Getenv("FEED_REFRESH_MINUTES")

	if envs.HTTP_PORT == "" {
		envs.HTTP_PORT = "3000"
	}
	if envs.FEED_REFRESH_MINUTES == "" {
		envs.FEED_REFRESH_MINUTES = "30"
	}

	return &envs
}
