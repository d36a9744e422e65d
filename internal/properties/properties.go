package properties

import (
	"os"
	"strconv"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func OutputPath() string {
	if path := os.Getenv("OUTPUT_PATH"); path != "" {
		return path
	}
	return "output"
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil || port <= 0 {
		return 8080
	}
	return port
}

// MaxUploadBytes bounds multipart request size; Landsat band crops stay
// well under the default.
func MaxUploadBytes() int64 {
	size, err := strconv.ParseInt(os.Getenv("MAX_UPLOAD_BYTES"), 10, 64)
	if err != nil || size <= 0 {
		return 512 << 20
	}
	return size
}
