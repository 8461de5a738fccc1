package llm

import "fmt"

// classificationPrompt describes the label dimensions. It deliberately
// carries no example tweets: the evaluation held-out sample must stay
// disjoint from anything baked into prompts, so exemplars are banned
// from both the evaluation and classification prompts.
const classificationPrompt = `Analyze this tweet and classify it across several dimensions. Be precise and objective.

HUMOR CLASSIFICATION:
- "absurdist": Unexpected juxtapositions, surreal comparisons, treating mundane things as profound
- "self_deprecating": Making fun of oneself, admitting personal flaws/mistakes
- "observational": Wry commentary on social situations, pointing out ironies
- "none": No humor detected

TOPIC CLASSIFICATION:
- "tech": Technology, AI, programming, software companies
- "housing": Real estate, zoning, urban planning, housing policy
- "religion": Faith, theology, religious communities, spirituality
- "politics": Government, elections, policy, political figures
- "social_commentary": Social issues, cultural criticism, gender/race dynamics
- "personal": Individual experiences, daily life, personal anecdotes
- "general": Doesn't clearly fit other categories

OTHER CLASSIFICATIONS:
- has_data_reference: References studies, data, research, statistics
- shows_vulnerability: Admits mistakes, uncertainty, learning, being wrong
- critique_type: "systemic" (broad systems), "institutional" (specific orgs), "personal" (individuals), "none"

Classify based only on the content, not on engagement or popularity.

Respond with a JSON object:
{"humor_type": "...", "topic_category": "...", "has_data_reference": false, "shows_vulnerability": false, "critique_type": "..."}

Return ONLY the JSON, no other text.`

// BuildPrompt returns the full user prompt for one tweet.
func BuildPrompt(tweetText string) string {
	return fmt.Sprintf("%s\n\nTweet to classify: %q", classificationPrompt, tweetText)
}
