// Package language turns the target language a user configures into the
// English language name the prompts expect.
//
// Language codes and BCP 47 tags resolve through golang.org/x/text, common
// English and native language words through a small table. Free-form values
// that match nothing, like "Simplified Chinese", pass through unchanged.
package language
