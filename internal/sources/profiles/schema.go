package profiles

// Entry is one preset of profiles.yaml.
type Entry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Browser    string `yaml:"browser"`
	Mode       string `yaml:"mode"`
	CustomPath string `yaml:"custom_path"`
	Default    bool   `yaml:"default"`
}

// File is the root structure of profiles.yaml:
//
//	profiles:
//	  - id: work-firefox
//	    name: Work
//	    browser: Firefox
//	    mode: Private
//	    default: true
//	  - id: brave
//	    name: Brave
//	    browser: Custom
//	    custom_path: ${HOME}/bin/brave
//	    mode: Normal
type File struct {
	Profiles []Entry `yaml:"profiles"`
}
