package patterns

// =============================================================================
// PATTERN DEFINITIONS BY CATEGORY
// All patterns are registered here and compiled once at first use.
// Phrase lists originate from observed generator output and common
// phishing corpora; scores are additive contributions used by the text
// heuristics and the behavioral scorer.
// =============================================================================

// --- STOCK AI-WRITING PHRASES ---
func (r *Registry) registerAIPhrasePatterns() {
	cat := CategoryAIPhrase

	r.register("important_to_note", `(?i)it('s| is) important to note`, cat, 0.1, "Hedging filler typical of generated prose")
	r.register("worth_noting", `(?i)it('s| is) worth (noting|mentioning)`, cat, 0.1, "Hedging filler typical of generated prose")
	r.register("in_conclusion", `(?i)\bin conclusion\b`, cat, 0.1, "Formulaic closing")
	r.register("furthermore", `(?i)\bfurthermore\b`, cat, 0.1, "Formulaic connective")
	r.register("moreover", `(?i)\bmoreover\b`, cat, 0.1, "Formulaic connective")
	r.register("delve_into", `(?i)\bdelve into\b`, cat, 0.1, "Overused generated-text verb")
	r.register("crucial", `(?i)\bit('s| is) (crucial|essential)\b`, cat, 0.1, "Hedging filler typical of generated prose")
	r.register("landscape_of", `(?i)\blandscape of\b`, cat, 0.1, "Overused generated-text metaphor")
	r.register("tapestry", `(?i)\btapestry\b`, cat, 0.1, "Overused generated-text metaphor")
	r.register("multifaceted", `(?i)\bmultifaceted\b`, cat, 0.1, "Overused generated-text adjective")
	r.register("comprehensive", `(?i)\bcomprehensive\b`, cat, 0.1, "Overused generated-text adjective")
	r.register("leverage", `(?i)\bleverage\b`, cat, 0.1, "Overused generated-text verb")
	r.register("foster", `(?i)\bfoster\b`, cat, 0.1, "Overused generated-text verb")
	r.register("paradigm", `(?i)\bparadigm\b`, cat, 0.1, "Overused generated-text noun")
	r.register("in_the_realm_of", `(?i)\bin the realm of\b`, cat, 0.1, "Overused generated-text phrase")
	r.register("navigating_the", `(?i)\bnavigating the\b`, cat, 0.1, "Overused generated-text phrase")
	r.register("in_todays_world", `(?i)\bin today'?s world\b`, cat, 0.1, "Formulaic opener")
	r.register("plays_a_vital_role", `(?i)\bplays a vital role\b`, cat, 0.1, "Formulaic phrase")
	r.register("one_must_consider", `(?i)\bone must consider\b`, cat, 0.1, "Formulaic phrase")
	r.register("as_we_can_see", `(?i)\bas we can see\b`, cat, 0.1, "Formulaic phrase")
}

// --- EXPLICIT AI SELF-ATTRIBUTION ---
func (r *Registry) registerAttributionPatterns() {
	cat := CategoryAttribution

	r.register("as_an_ai", `(?i)\bas an ai\b`, cat, 1.0, "Assistant self-reference")
	r.register("generated_by", `(?i)\bgenerated by\b`, cat, 1.0, "Explicit generation attribution")
	r.register("written_by_ai", `(?i)\bwritten by ai\b`, cat, 1.0, "Explicit generation attribution")
	r.register("ai_generated", `(?i)\bai[- ]generated\b`, cat, 1.0, "Explicit generation attribution")
	r.register("model_names", `(?i)\b(chatgpt|gpt-4|gemini|claude|copilot)\b`, cat, 1.0, "Named assistant reference")
}

// --- PERSONAL-VOICE MARKERS ---
func (r *Registry) registerFirstPersonPatterns() {
	cat := CategoryFirstPerson

	r.register("first_person", `(?i)\b(I |my |me |mine |I'm|I've|we |our )\b`, cat, 0, "First-person pronoun")
}

// --- PHISHING / SCAM INDICATORS ---
func (r *Registry) registerScamPatterns() {
	cat := CategoryScam

	r.register("act_now", `(?i)\bact now\b`, cat, 0.2, "Urgency pressure")
	r.register("limited_time", `(?i)\blimited time\b`, cat, 0.2, "Urgency pressure")
	r.register("click_here", `(?i)\bclick here\b`, cat, 0.2, "Call-to-action bait")
	r.register("urgent", `(?i)\burgent\b`, cat, 0.2, "Urgency pressure")
	r.register("congratulations", `(?i)\bcongratulations\b`, cat, 0.2, "Prize bait")
	r.register("you_have_won", `(?i)\byou('ve| have) won\b`, cat, 0.2, "Prize bait")
	r.register("wire_transfer", `(?i)\bwire transfer\b`, cat, 0.2, "Payment redirection")
	r.register("social_security", `(?i)\bsocial security\b`, cat, 0.2, "Identity harvesting")
	r.register("password", `(?i)\bpassword\b`, cat, 0.2, "Credential harvesting")
	r.register("verify_account", `(?i)\bverify your account\b`, cat, 0.2, "Credential harvesting")
}

// --- GENERATIVE-TOOL SIGNATURES (image metadata Software tags) ---
func (r *Registry) registerGeneratorPatterns() {
	cat := CategoryGenerator

	r.register("stable_diffusion", `(?i)stable[ -]?diffusion`, cat, 0.4, "Stable Diffusion software tag")
	r.register("midjourney", `(?i)midjourney`, cat, 0.4, "Midjourney software tag")
	r.register("dalle", `(?i)dall[.\-]?e`, cat, 0.4, "DALL-E software tag")
	r.register("comfyui", `(?i)comfyui`, cat, 0.4, "ComfyUI software tag")
	r.register("automatic1111", `(?i)automatic1111`, cat, 0.4, "AUTOMATIC1111 webui tag")
	r.register("flux", `(?i)\bflux\.?(1|dev|pro)?\b`, cat, 0.4, "Flux software tag")
	r.register("firefly", `(?i)adobe firefly`, cat, 0.4, "Adobe Firefly software tag")
}
