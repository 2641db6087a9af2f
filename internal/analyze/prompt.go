package analyze

// SystemPrompt frames the model as an OSINT analyst. Kept short: the
// task detail lives in the instruction, not the persona.
const SystemPrompt = "You are an OSINT-focused cybersecurity analyst specializing in dark-web (.onion) content. " +
	"Output only the requested JSON fields."

// DefaultInstruction is the analysis instruction used when a job does
// not supply its own. It asks for JSON so the verdict can carry
// structured findings, but free-form output is tolerated downstream.
const DefaultInstruction = `Analyze the following dark-web content captured from a .onion page and return ONLY JSON.

Tasks:
1) Content Summary - what this page is about, plain and factual.
2) Key Information - extract concrete details: names/aliases, contact methods
   (Telegram/Jabber/Tox/Email), URLs (.onion/clearnet), PGP keys/fingerprints,
   crypto wallets (BTC/ETH/XMR/...), product or service listings, prices and
   currencies, dates, target industries or regions, and claims of affiliation.
3) Security Assessment - indicators of malware, phishing, or scams, escrow
   claims, operational security practices, external links or downloads.
4) Categories - classify the page with one or more of:
   ["marketplace","vendor_shop","forum","leak_site","ransomware_blog","carding",
    "fraud_service","malware_service","hosting","mixing_laundry","search_index",
    "news","phishing","scam","other"]
5) Notable Elements - anything unusual or high-signal.
6) Recommendations - safety and handling guidance for analysts.
7) Source Reliability - rate 1-5 with a brief explanation.
8) Confidence - 0-1 with a one-sentence justification.
9) Limitations - note truncation, language barriers, or low-quality content.

Normalization rules:
- Normalize dates to ISO 8601.
- For PGP keys include the 40-hex fingerprint and whether a key block is present.
- For crypto wallets include type, address, and network or tag.
- Flag v2 onion links as deprecated.
- If the content is not in English, include a short English summary and the detected language.`
