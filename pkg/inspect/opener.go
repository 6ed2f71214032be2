// pkg/inspect/opener.go

package inspect

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener shows an exported file to the user.
type Opener interface {
	Open(path string) error
}

// SystemOpener launches the desktop's default application and does not
// wait for it.
type SystemOpener struct{}

func (SystemOpener) Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("OS %s is not supported", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// NopOpener only writes the file.
type NopOpener struct{}

func (NopOpener) Open(string) error { return nil }
