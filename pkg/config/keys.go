package config

// Configuration keys shared with the build system
const (
	KeySDKPath          = "AOS_SDK_PATH"
	KeyOSPath           = "OS_PATH"
	KeyRemotePath       = "REMOTE_PATH"
	KeyProgramPath      = "PROGRAM_PATH"
	KeyPathType         = "PATH_TYPE"
	KeyProtocol         = "PROTOCOL"
	KeyDepth            = "DEPTH"
	KeyCubeModify       = "CUBE_MODIFY"
	KeyComponentBaseURL = "COMPONENT_BASE_URL"
	KeyRoot             = "ROOT"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "AOS_"

// Keys lists every known key in display order
var Keys = []string{
	KeySDKPath,
	KeyOSPath,
	KeyRemotePath,
	KeyProgramPath,
	KeyPathType,
	KeyProtocol,
	KeyDepth,
	KeyCubeModify,
	KeyComponentBaseURL,
	KeyRoot,
}

// IsKnownKey reports whether key is one of Keys
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// envKey maps an environment variable to a config key. AOS_SDK_PATH keeps
// its name; every other AOS_X maps to X. Variables naming no known key,
// like AOS_CONFIG_DIR, map to "" and are skipped.
func envKey(name string) string {
	if name == KeySDKPath {
		return name
	}
	if key := name[len(EnvPrefix):]; IsKnownKey(key) {
		return key
	}
	return ""
}
