// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import "github.com/poiesic/indexit/core"

// ImageDescription is the outcome of describing one image: a class
// deciding whether the image is worth indexing, and its textual rendition.
type ImageDescription struct {
	Class       core.ImageClass
	Description string
}

// FallbackDescription is returned when description fails; the information
// class keeps the image in the pipeline rather than silently dropping it.
func FallbackDescription() ImageDescription {
	return ImageDescription{
		Class:       core.ImageClassInformation,
		Description: "Description unavailable",
	}
}

// ImageClasses lists the classes a describer may assign, in the order they
// are presented to the model.
var ImageClasses = []core.ImageClass{
	core.ImageClassIcon,
	core.ImageClassShape,
	core.ImageClassLogo,
	core.ImageClassPicture,
	core.ImageClassInformation,
}

// ParseImageClass maps a model-reported class to a known ImageClass,
// defaulting to information for anything unrecognized.
func ParseImageClass(s string) core.ImageClass {
	for _, c := range ImageClasses {
		if string(c) == s {
			return c
		}
	}
	return core.ImageClassInformation
}
