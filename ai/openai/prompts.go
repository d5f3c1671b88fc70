package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/indexit/ai"
)

const summaryPrompt = `Task: Document Summary
Instruction:
    Identify key information:
        - Document Type and Purpose:
            Identify the type of document (e.g., report, agreement, article) and its main purpose.
        - Entities:
            List all entities prominently mentioned in this document: organizations (groups, companies, facilities, departments, etc.), people, locations etc.
        - Location and Context:
            Include relevant locations or settings if applicable.
        - Main Topics:
            Highlight the primary topics or issues addressed in the document.
        - Timeframe:
            Note any specific dates or time periods covered by the document.
        - Important Details:
            Summarize key points, findings, or conclusions.
        - Legal or Compliance Aspects:
            If applicable, mention any legal, compliance, or regulatory elements.
        - Purpose and Implications:
            Explain the broader implications or intended outcomes of the document.

    By following these steps, the summary will capture the essential elements needed for accurate retrieval.

Task 2: Generate 10 QA pairs based on information in the document
Instruction: Specific questions with specific details are preferred because they give the full context.
    Examples of generic questions (undesirable):
        'What was the rate of change according to the agreement?' (uses 'the agreement' instead of giving the full context)
        'How many people were involved?' (involved in what, for what? too generic)
    Examples of specific questions (desirable):
        'What was the growth rate of the interest rate in the 6th month according to the loan agreement for priority customers?'
        'How many researchers from Stanford University participated in the climate change study conducted in Arctic regions between 2020-2022?'
    Follow this pattern to create specific questions that incorporate the specific who, what, where, when, and why from the document. Avoid generic questions.

Following is sampled content from a document. Provide a summarization and 10 QA pairs as instructed.`

const descriptionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "image_type": {
      "type": "string",
      "enum": [%s]
    },
    "image_description": {
      "type": "string"
    }
  },
  "required": ["image_type", "image_description"],
  "additionalProperties": false
}`

const descriptionPromptTemplate = `Task: Image-to-Text Conversion

Objective: Transform the provided image of a document into text form without information loss.

Output ONLY valid JSON complying with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Instructions: Detect image type AND create image description
    1. Detect image type: available types are %s, where:
      + "shape" applies to simple shapes such as lines, boxes, curves, etc.
      + "information" applies to documents, diagrams, or infographics
      + "picture" applies to pictures of things, except icons, shapes, logos
      + "icon" and "logo" are self-explanatory

    2. Create description
    If the image type is one of "icon", "shape", "logo", leave the image description blank.
    Otherwise (for "information" and "picture"):
        - Examine the Image: Carefully look at the document to identify sections, headings, and any structured information.
        - Identify Key Elements:
            + Note the name of the organization or company involved.
            + Highlight every specific term, condition, or numerical datum.
            + Pay attention to dates, names, and signatures that might indicate the document's purpose or validity period.
        - Produce output:
            + If the image is a document, write down all the text from the image as accurately as possible. Pay attention to details like numbers, dates, and specific terms. If tables exist, transcribe them as valid Markdown tables (consistent column count between headers and data). Stay true to the source material, do not include introduction or commentary.
            + If the image is a picture, describe it in detail.

Review for Accuracy: Double-check your transcription for any errors or omissions to ensure completeness.`

// buildDescriptionPrompt creates the image description prompt with the
// response schema and class list embedded.
func buildDescriptionPrompt() string {
	quoted := make([]string, len(ai.ImageClasses))
	for i, c := range ai.ImageClasses {
		quoted[i] = `"` + string(c) + `"`
	}
	classes := strings.Join(quoted, ", ")
	schema := fmt.Sprintf(descriptionResponseSchema, classes)
	return fmt.Sprintf(descriptionPromptTemplate, schema, classes)
}
