package toolcheck

import (
	"fmt"
	"runtime"
)

// InstallInstructions contains manual installation guidance for a platform.
type InstallInstructions struct {
	// Platform is the operating system (windows, darwin, linux).
	Platform string
	// Steps contains the step-by-step instructions.
	Steps []string
	// ExampleCommand contains a single command that performs the install.
	ExampleCommand string
}

// GetInstallInstructions returns git installation guidance for the
// current operating system.
func GetInstallInstructions() *InstallInstructions {
	return GetInstallInstructionsFor(runtime.GOOS)
}

// GetInstallInstructionsFor returns git installation guidance for the
// given operating system.
func GetInstallInstructionsFor(platform string) *InstallInstructions {
	switch platform {
	case "windows":
		return getWindowsInstructions()
	case "darwin":
		return getDarwinInstructions()
	default:
		return getLinuxInstructions(platform)
	}
}

// getWindowsInstructions returns installation guidance for Windows.
func getWindowsInstructions() *InstallInstructions {
	return &InstallInstructions{
		Platform: "windows",
		Steps: []string{
			"1. 打开 https://git-scm.com/download/win 下载安装包",
			"2. 运行安装程序, 保持默认选项即可",
			"3. 重启终端或命令提示符后重试",
		},
		ExampleCommand: "winget install --id Git.Git -e",
	}
}

// getDarwinInstructions returns installation guidance for macOS.
func getDarwinInstructions() *InstallInstructions {
	return &InstallInstructions{
		Platform: "darwin",
		Steps: []string{
			"1. 执行 xcode-select --install 安装命令行工具",
			"   或使用 Homebrew: brew install git",
			"2. 安装完成后重启终端",
		},
		ExampleCommand: "brew install git",
	}
}

// getLinuxInstructions returns installation guidance for Linux and
// other Unix-like systems.
func getLinuxInstructions(platform string) *InstallInstructions {
	return &InstallInstructions{
		Platform: platform,
		Steps: []string{
			"1. 使用发行版的包管理器安装 git",
			"   Debian/Ubuntu: sudo apt install git",
			"   Fedora:        sudo dnf install git",
			"   Arch:          sudo pacman -S git",
			"2. 安装完成后重试",
		},
		ExampleCommand: "sudo apt install git",
	}
}

// FormatInstructions formats the guidance as a human-readable string.
func FormatInstructions(instructions *InstallInstructions) string {
	if instructions == nil {
		return ""
	}

	result := "未检测到 git 命令。请先安装:\n\n"

	for _, step := range instructions.Steps {
		result += step + "\n"
	}

	if instructions.ExampleCommand != "" {
		result += "\n或者直接执行以下命令:\n"
		result += fmt.Sprintf("  %s\n", instructions.ExampleCommand)
	}

	return result
}
