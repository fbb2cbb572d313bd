package recipes

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemInfo describes the machine that will run the transcode, so the
// generator can suggest hardware acceleration when it is available.
type SystemInfo struct {
	OS           string `json:"os"`
	OSVersion    string `json:"os_version"`
	Architecture string `json:"architecture"`
	Processor    string `json:"processor"`
	MemoryMB     uint64 `json:"memory_mb"`
	GPU          string `json:"gpu"`
}

// CollectSystemInfo gathers host facts; every probe is best-effort and
// a failed one just leaves its field empty.
func CollectSystemInfo() SystemInfo {
	info := SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}

	if h, err := host.Info(); err == nil {
		info.OS = h.Platform
		info.OSVersion = h.PlatformVersion
		info.Architecture = h.KernelArch
	}
	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.Processor = cpus[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryMB = vm.Total / 1024 / 1024
	}
	info.GPU = detectGPU()

	return info
}

func detectGPU() string {
	if out, err := exec.Command("nvidia-smi", "--query-gpu=name", "--format=csv,noheader").Output(); err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return "NVIDIA GPU: " + name
		}
	}
	if out, err := exec.Command("rocm-smi", "--showproductname").Output(); err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return "AMD GPU (ROCm): " + name
		}
	}
	if out, err := exec.Command("vainfo").Output(); err == nil {
		if strings.Contains(string(out), "VAProfile") {
			return "VAAPI available"
		}
	}
	return "no GPU acceleration detected"
}
